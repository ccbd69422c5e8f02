package roster

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"roster-sync/core/ledger"
	"roster-sync/core/logger"
	"roster-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Handler handles HTTP requests for the roster.
type Handler struct {
	service       *Service
	backupDefault bool
	group         singleflight.Group
}

// NewHandler creates a new HTTP handler. backupDefault applies when a sync request
// does not specify ?backup.
func NewHandler(service *Service, backupDefault bool) *Handler {
	return &Handler{service: service, backupDefault: backupDefault}
}

// RegisterRoutes registers the roster routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/roster")
	group.Get("/", h.HandleGetRoster)
	group.Get("/members/:id", h.HandleGetMember)
	group.Post("/sync", h.HandleSync)
	group.Get("/backups", h.HandleListBackups)
}

// HandleGetRoster returns the current ledger.
// @Summary Get Roster
// @Description Returns the ledger file as it currently is on disk.
// @Tags roster
// @Produce json
// @Success 200 {object} ledger.Set "Ledger"
// @Failure 404 {object} map[string]string "Ledger not found"
// @Failure 422 {object} map[string]string "Malformed ledger"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /roster [get]
func (h *Handler) HandleGetRoster(c *fiber.Ctx) error {
	set, err := h.service.Snapshot()
	if err != nil {
		return h.fail(c, "Failed to read ledger", err)
	}
	return c.JSON(set)
}

// HandleGetMember returns a single ledger row by external id.
// @Summary Get Roster Member
// @Description Looks up the ledger row whose discord id matches.
// @Tags roster
// @Produce json
// @Param id path string true "Discord id"
// @Success 200 {object} map[string]string "Ledger row"
// @Failure 404 {object} map[string]string "Member not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /roster/members/{id} [get]
func (h *Handler) HandleGetMember(c *fiber.Ctx) error {
	id := c.Params("id")
	record, found, err := h.service.Member(id)
	if err != nil {
		return h.fail(c, "Failed to read ledger", err)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found", "id": id})
	}
	return c.JSON(record)
}

// HandleSync runs a reconciliation.
// @Summary Synchronize Roster
// @Description Reconciles the member table against the ledger, resolving new members through the directory. Identical concurrent requests share one run.
// @Tags roster
// @Produce json
// @Param dry_run query boolean false "Reconcile without saving"
// @Param backup query boolean false "Upload the previous ledger before saving"
// @Success 200 {object} RunResult "Run result"
// @Failure 400 {object} map[string]string "Invalid query parameter"
// @Failure 409 {object} map[string]string "Run in progress"
// @Failure 422 {object} map[string]string "Malformed ledger"
// @Failure 502 {object} map[string]string "Source or directory failure"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /roster/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	dryRun, err := queryBool(c, "dry_run", false)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	backup, err := queryBool(c, "backup", h.backupDefault)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opts := RunOptions{DryRun: dryRun, Backup: backup}
	key := fmt.Sprintf("sync:%t:%t", opts.DryRun, opts.Backup)

	// The shared run outlives any single request.
	ctx := context.WithoutCancel(c.UserContext())
	v, err, shared := h.group.Do(key, func() (any, error) {
		return h.service.Run(ctx, opts)
	})
	if err != nil {
		return h.fail(c, "Reconciliation failed", err)
	}

	result := v.(*RunResult)
	l.Info("Reconciliation served",
		zap.String("run_id", result.RunID),
		zap.Bool("shared", shared),
	)
	return c.JSON(result)
}

// HandleListBackups lists stored ledger backups.
// @Summary List Roster Backups
// @Description Lists the ledger backups in object storage, newest first.
// @Tags roster
// @Produce json
// @Success 200 {object} map[string]interface{} "Backup objects"
// @Failure 503 {object} map[string]string "Object storage not configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /roster/backups [get]
func (h *Handler) HandleListBackups(c *fiber.Ctx) error {
	keys, err := h.service.Backups(c.UserContext())
	if err != nil {
		return h.fail(c, "Failed to list backups", err)
	}
	return c.JSON(fiber.Map{"backups": keys, "count": len(keys)})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// StatusFor maps a run error to an HTTP status.
func StatusFor(err error) int {
	var (
		srcErr *reconcile.SourceError
		resErr *reconcile.ResolutionError
		fmtErr *ledger.FormatError
	)
	switch {
	case errors.Is(err, ErrRunInProgress):
		return fiber.StatusConflict
	case errors.Is(err, ErrLedgerMissing), errors.Is(err, ErrNoBackups):
		return fiber.StatusNotFound
	case errors.Is(err, ErrBackupUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &srcErr), errors.As(err, &resErr):
		return fiber.StatusBadGateway
	case errors.As(err, &fmtErr):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func queryBool(c *fiber.Ctx, name string, def bool) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
