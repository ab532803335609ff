package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/api/responses"
	"github.com/angelmondragon/callcenter-backend/api/validators"
	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
)

// TaskReader is the read side of the daily task tracker.
type TaskReader interface {
	Today(ctx context.Context, accountID uuid.UUID, now time.Time) (tasks.Snapshot, error)
	History(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]tasks.Snapshot, error)
	Location() *time.Location
}

const defaultHistoryDays = 7

var timeNow = time.Now

func TasksToday(tracker TaskReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tracker == nil {
			serviceUnavailable(w, r, logg, "tasks")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		snapshot, err := tracker.Today(r.Context(), actor.ID, timeNow())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// TasksHistory lists the caller's daily rows between from and to
// (YYYY-MM-DD, inclusive). Both default to the trailing week.
func TasksHistory(tracker TaskReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tracker == nil {
			serviceUnavailable(w, r, logg, "tasks")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		loc := tracker.Location()
		to, err := validators.ParseQueryDate(r, "to", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryDate(r, "from", loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end := timeNow()
		if to != nil {
			end = *to
		}
		start := end.AddDate(0, 0, -(defaultHistoryDays - 1))
		if from != nil {
			start = *from
		}
		history, err := tracker.History(r.Context(), actor.ID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
