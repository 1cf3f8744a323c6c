// internal/reports/domain.go
package reports

import (
	"time"

	"github.com/google/uuid"

	"biblioteka/internal/storage"
)

// OverdueEntry is one line of the overdue report: an active loan past its
// due date, with whole days overdue and the accrued fine.
type OverdueEntry struct {
	LoanID      uuid.UUID             `json:"loan_id"`
	Member      storage.MemberSummary `json:"member"`
	Book        storage.BookSummary   `json:"book"`
	LoanDate    time.Time             `json:"loan_date"`
	DueDate     time.Time             `json:"due_date"`
	DaysOverdue int                   `json:"days_overdue"`
	Fine        float64               `json:"fine"`
}
