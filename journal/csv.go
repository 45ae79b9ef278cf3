// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	events *csv.Writer
	file   *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{"event_id", "time", "type", "account_id", "strategy_id", "layer", "allowed", "value", "reason"}); err != nil {
		f.Close()
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSV{events: w, file: f}, nil
}

func (j *CSV) Record(e Event) error {
	err := j.events.Write([]string{
		e.ID,
		e.Time.Format(time.RFC3339),
		string(e.Type),
		e.AccountID,
		e.StrategyID,
		e.Layer,
		strconv.FormatBool(e.Allowed),
		f(e.Value),
		e.Reason,
	})
	if err != nil {
		return err
	}

	j.events.Flush()
	return j.events.Error()
}

func (j *CSV) Close() error {
	j.events.Flush()
	if err := j.events.Error(); err != nil {
		return err
	}
	return j.file.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
