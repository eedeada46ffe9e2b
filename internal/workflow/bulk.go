package workflow

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/whi-0404/TopCV-sub000/internal/authz"
	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
)

// BulkTransitionCoordinator applies one target status to a batch of
// applications in a single transaction. Items whose current status cannot
// legally reach the target are skipped, not errored; the skip is reported
// back so callers can see the partial outcome.
type BulkTransitionCoordinator struct {
	DB *database.DBinstanceStruct
}

// NewBulkTransitionCoordinator creates a new instance of BulkTransitionCoordinator
func NewBulkTransitionCoordinator(db *database.DBinstanceStruct) *BulkTransitionCoordinator {
	return &BulkTransitionCoordinator{DB: db}
}

// BulkResult reports the partial-success outcome of a bulk update.
type BulkResult struct {
	UpdatedIDs []uint `json:"updated_ids"`
	SkippedIDs []uint `json:"skipped_ids"`
}

// BulkUpdateStatus moves every referenced application to newStatus where
// the review table allows it. The whole batch fails when any id is
// missing, when the status is unparseable, or when the principal does not
// own every referenced application's post. Transitioned items commit
// together or not at all.
func (w *BulkTransitionCoordinator) BulkUpdateStatus(p authz.Principal, ids []uint, rawStatus string) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, badRequest("application ids are required")
	}

	newStatus, err := model.ParseApplicationStatus(rawStatus)
	if err != nil {
		return nil, badRequest("invalid application status %q", rawStatus)
	}

	result := &BulkResult{UpdatedIDs: []uint{}, SkippedIDs: []uint{}}
	err = w.DB.Transaction(func(tx *gorm.DB) error {
		// Lock the whole batch so a concurrent withdraw cannot slip a
		// terminal status under the batched update below.
		var apps []model.Application
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).Find(&apps).Error; err != nil {
			return err
		}
		if len(apps) != len(uniqueIDs(ids)) {
			return badRequest("some applications not found")
		}

		// Ownership over the full batch before any write.
		for i := range apps {
			ownerID, err := applicationOwner(tx, &apps[i])
			if err != nil {
				return err
			}
			if !authz.Allow(p, ownerID) {
				return unauthorized("application %d belongs to another employer", apps[i].ID)
			}
		}

		for i := range apps {
			if !model.CanTransition(apps[i].Status, newStatus) {
				result.SkippedIDs = append(result.SkippedIDs, apps[i].ID)
				continue
			}
			result.UpdatedIDs = append(result.UpdatedIDs, apps[i].ID)
		}

		if len(result.UpdatedIDs) == 0 {
			return nil
		}
		return tx.Model(&model.Application{}).
			Where("id IN ?", result.UpdatedIDs).
			Update("status", newStatus).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
