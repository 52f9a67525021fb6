package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"taskapi/internal/models"
)

// The export uses ; as the field delimiter so spreadsheets in locales with
// decimal commas do not split numbers, and quotes every field for the same
// reason. encoding/csv only quotes on demand, hence the local writer.

const (
	delimiter = ";"
	bom       = "\uFEFF"
	crlf      = "\r\n"

	noDescription = "No description"
)

var header = []string{
	"ID",
	"Title",
	"Description",
	"Status",
	"Priority",
	"Creation Date",
	"Creation Time",
	"Days Since Creation",
	"Owner Username",
}

// Filename names the download for a given user and export date.
func Filename(username string, now time.Time) string {
	return fmt.Sprintf("tasks_%s_%s.csv", username, now.Format("2006-01-02"))
}

// WriteTasks renders the task sequence as a UTF-8 CSV with a byte-order
// marker. Row order follows the input; output is deterministic for the same
// input and date.
func WriteTasks(w io.Writer, tasks []models.Task, username string, now time.Time) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	if err := writeRecord(w, header); err != nil {
		return err
	}

	for _, t := range tasks {
		days := daysSince(t.CreatedAt, now)

		description := strings.TrimSpace(t.Description)
		if description == "" {
			description = noDescription
		}

		created := t.CreatedAt.In(now.Location())
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			description,
			models.StatusLabel(t.Status),
			Priority(t.Status, days),
			created.Format("02/01/2006"),
			created.Format("15:04"),
			fmt.Sprintf("%d days", days),
			username,
		}
		if err := writeRecord(w, record); err != nil {
			return err
		}
	}
	return nil
}

// Priority grades how overdue a pending task is. Any other status has no
// meaningful priority.
func Priority(status string, daysSinceCreation int) string {
	if status != models.StatusPending {
		return "N/A"
	}
	switch {
	case daysSinceCreation > 7:
		return "High"
	case daysSinceCreation > 3:
		return "Medium"
	default:
		return "Low"
	}
}

// daysSince counts whole calendar days between a task's creation date and
// the export date. Both dates are rebuilt at midnight UTC so the difference
// is an exact multiple of 24h even when the local zone crosses a DST shift.
func daysSince(createdAt, now time.Time) int {
	y, m, d := createdAt.In(now.Location()).Date()
	created := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(today.Sub(created).Hours() / 24)
}

func writeRecord(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	if _, err := io.WriteString(w, strings.Join(quoted, delimiter)+crlf); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
