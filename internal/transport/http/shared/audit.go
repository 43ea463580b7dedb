package shared

import (
	"net/http"
	"strconv"

	"ems/internal/domain/audit"
	"ems/internal/platform/requestctx"
)

// RecordAudit writes an audit event for the request. A failed write is
// logged and never fails the request.
func RecordAudit(r *http.Request, rec audit.Recorder, actorID int64, action, entityType string, entityID int64, before, after any) {
	if rec == nil {
		return
	}
	id := ""
	if entityID > 0 {
		id = strconv.FormatInt(entityID, 10)
	}
	err := rec.Record(r.Context(), audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   id,
		RequestID:  requestctx.RequestID(r.Context()),
		IP:         ClientIP(r),
		Before:     before,
		After:      after,
	})
	if err != nil {
		requestctx.Logger(r.Context()).Warn("audit write failed", "action", action, "entity", entityType, "err", err)
	}
}
