package followup

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	leadsrepo "noticedesk_backend/internal/leads/repository"
	"noticedesk_backend/internal/whatsapp"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
)

// Worker consumes follow-up tasks and sends WhatsApp nudges.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	leads  leadsrepo.Repository
	wa     *whatsapp.Client
	log    *logger.Logger
}

// NewWorker creates the asynq worker.
func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, wa *whatsapp.Client, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		leads:  leadsrepo.New(pool),
		wa:     wa,
		log:    log,
	}

	mux.HandleFunc(TaskCheckoutNudge, w.handleCheckoutNudge)

	return w, nil
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("followup worker stopped", "error", err)
	}
}

// handleCheckoutNudge sends the recovery message unless the lead paid or
// was closed after the nudge was scheduled.
func (w *Worker) handleCheckoutNudge(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCheckoutNudgePayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	lead, err := w.leads.GetByID(ctx, leadID)
	if err != nil {
		return err
	}

	if lead.Status == leadsrepo.StatusPaid || lead.Status == leadsrepo.StatusClosed {
		w.log.Info("checkout nudge skipped", "leadId", lead.ID, "status", lead.Status)
		return nil
	}
	if lead.Phone == "" {
		return nil
	}

	name := payload.Name
	if name == "" {
		name = lead.Name
	}

	message := fmt.Sprintf(
		"Hi %s, your legal notice draft request is saved. Complete the payment whenever you're ready and our team will start drafting right away. Reply here if you have any questions.",
		name,
	)

	if err := w.wa.SendMessage(ctx, lead.Phone, message); err != nil {
		return fmt.Errorf("send checkout nudge: %w", err)
	}

	w.log.Info("checkout nudge sent", "leadId", lead.ID)
	return nil
}
