package middleware

import (
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/taskbot/core/metrics"
)

// Metrics observes the handling time of every update.
func Metrics(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start, ok := c.Get(keyStart).(time.Time)
		if !ok {
			start = time.Now()
		}
		err := next(c)
		metrics.RecordUpdate(Kind(c), err, time.Since(start))
		return err
	}
}
