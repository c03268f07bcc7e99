package controllers

import (
	"time"

	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

const dateLayout = "2006-01-02"

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").
			WithDetails(map[string]any{"date": raw, "layout": dateLayout})
	}
	return t, nil
}
