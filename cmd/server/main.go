// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/leadflow/crm-trigger-backend/internal/controller"
	"github.com/leadflow/crm-trigger-backend/internal/db"
	"github.com/leadflow/crm-trigger-backend/internal/handler"
	"github.com/leadflow/crm-trigger-backend/internal/queue"
	"github.com/leadflow/crm-trigger-backend/internal/repository"
	"github.com/leadflow/crm-trigger-backend/internal/sender"
	"github.com/leadflow/crm-trigger-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	triggerRepo := &repository.TriggerRepository{DB: db.DB}
	messageLogRepo := &repository.MessageLogRepository{DB: db.DB}
	connectionRepo := &repository.ConnectionRepository{DB: db.DB}

	triggerService := &service.TriggerService{
		TriggerRepo: triggerRepo,
	}

	activationService := &service.ActivationService{
		TriggerRepo:    triggerRepo,
		MessageLogRepo: messageLogRepo,
		ConnectionRepo: connectionRepo,
	}

	// Optional in-process dispatch for single-binary deployments: a cron
	// sweep queues due ledger entries on the in-memory queue and the
	// subscriber sends them, no broker needed. With the standalone worker
	// running, leave DISPATCH_MODE unset so due entries go through
	// RabbitMQ instead.
	if os.Getenv("DISPATCH_MODE") == "inprocess" {
		q := queue.NewInMemoryQueue()
		dispatchService := &service.DispatchService{
			MessageLogRepo: messageLogRepo,
			Sender:         sender.NewWhatsappSender(),
		}
		queue.StartDispatchSubscriber(q, dispatchService)

		spec := os.Getenv("POLL_CRON")
		if spec == "" {
			spec = "* * * * *"
		}
		c := cron.New()
		if _, err := c.AddFunc(spec, func() {
			queued, err := dispatchService.EnqueueDue(q, time.Now().UTC())
			if err != nil {
				log.Println("⚠️ Due-message sweep failed:", err)
				return
			}
			if queued > 0 {
				log.Printf("📦 Queued %d due message(s) in-process", queued)
			}
		}); err != nil {
			log.Fatal("Invalid POLL_CRON expression:", err)
		}
		c.Start()
		defer c.Stop()

		log.Println("📦 In-process dispatch sweep started")
	}

	triggerController := &controller.TriggerController{
		TriggerService:    triggerService,
		ActivationService: activationService,
	}

	messageLogHandler := handler.NewMessageLogHandler(messageLogRepo)

	r := chi.NewRouter()

	// Trigger routes
	r.Post("/triggers", triggerController.CreateTrigger)
	r.Get("/triggers", triggerController.ListTriggers)
	r.Get("/triggers/{id}", triggerController.GetTrigger)
	r.Put("/triggers/{id}", triggerController.UpdateTrigger)
	r.Patch("/triggers/{id}/active", triggerController.ToggleActive)
	r.Delete("/triggers/{id}", triggerController.DeleteTrigger)
	r.Get("/columns/{columnID}/triggers", triggerController.ListColumnTriggers)

	// Lead-move activation
	r.Post("/leads/move", triggerController.MoveLead)

	// Ledger routes (dispatch poller contract + audit views)
	r.Get("/messages/due", messageLogHandler.ListDueHandler)
	r.Post("/messages/{id}/sent", messageLogHandler.MarkSentHandler)
	r.Post("/messages/{id}/failed", messageLogHandler.MarkFailedHandler)
	r.Get("/messages/stats", messageLogHandler.StatsHandler)
	r.Get("/triggers/{id}/messages", messageLogHandler.ListTriggerMessagesHandler)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("🚀 Server running on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
