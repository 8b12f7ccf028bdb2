package wayfare

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Validate checks a raw trip request and resolves its destination.
//
// Checks run in order (destination, dates, budget, interests) and all of
// them run: the returned error, when non-nil, is a ValidationErrors listing
// every problem with at most one entry per field. The GeoLocation is
// returned whenever geocoding succeeded, even if other fields are invalid.
// Validate calls nothing but the geocoder.
func Validate(ctx context.Context, geocoder Geocoder, raw RawRequest) (TripRequest, *GeoLocation, error) {
	var (
		errs ValidationErrors
		req  TripRequest
		loc  *GeoLocation
	)

	req.Destination = strings.TrimSpace(raw.Destination)
	if req.Destination == "" {
		errs = append(errs, FieldError{Field: FieldDestination, Message: "Please enter a destination."})
	} else {
		g, err := geocoder.Geocode(ctx, req.Destination)
		switch {
		case err == nil:
			loc = &g
		case errors.Is(err, ErrGeocode):
			errs = append(errs, FieldError{
				Field:   FieldDestination,
				Message: "Invalid destination. Please enter a valid city name.",
				Err:     err,
			})
		default:
			errs = append(errs, FieldError{
				Field:   FieldDestination,
				Message: fmt.Sprintf("Could not validate destination: %s.", req.Destination),
				Err:     err,
			})
		}
	}

	start, end, fe, ok := parseDates(raw.StartDate, raw.EndDate)
	if ok {
		req.StartDate, req.EndDate = start, end
	} else {
		errs = append(errs, fe)
	}

	budget, fe, ok := parseBudget(raw.Budget)
	if ok {
		req.Budget = budget
	} else {
		errs = append(errs, fe)
	}

	req.Interests = normalizeInterests(raw.Interests)
	if len(req.Interests) == 0 {
		errs = append(errs, FieldError{Field: FieldInterests, Message: "Please select at least one interest."})
	}

	if len(errs) > 0 {
		return TripRequest{}, loc, errs
	}
	return req, loc, nil
}

func parseDates(rawStart, rawEnd string) (time.Time, time.Time, FieldError, bool) {
	rawStart, rawEnd = strings.TrimSpace(rawStart), strings.TrimSpace(rawEnd)
	if rawStart == "" || rawEnd == "" {
		return time.Time{}, time.Time{}, FieldError{Field: FieldDates, Message: "Please select start and end dates."}, false
	}
	start, err := time.Parse(DateLayout, rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, FieldError{Field: FieldDates, Message: "Start date must use the YYYY-MM-DD format.", Err: err}, false
	}
	end, err := time.Parse(DateLayout, rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, FieldError{Field: FieldDates, Message: "End date must use the YYYY-MM-DD format.", Err: err}, false
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, FieldError{Field: FieldDates, Message: "Start date must be before end date."}, false
	}
	return start, end, FieldError{}, true
}

// budgetPattern is plain decimal notation with an optional exponent.
// strconv.ParseFloat also takes hex floats and digit separators.
var budgetPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func parseBudget(raw string) (float64, FieldError, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: FieldBudget, Message: "Please enter a budget."}, false
	}
	if !budgetPattern.MatchString(raw) {
		return 0, FieldError{Field: FieldBudget, Message: "Budget must be a number."}, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, FieldError{Field: FieldBudget, Message: "Budget must be a number.", Err: err}, false
	}
	if v <= 0 {
		return 0, FieldError{Field: FieldBudget, Message: "Budget must be greater than zero."}, false
	}
	return v, FieldError{}, true
}

// normalizeInterests trims, title-cases and de-duplicates tags, keeping the
// first occurrence order.
func normalizeInterests(tags []string) []string {
	caser := cases.Title(language.English)
	normalized := lo.FilterMap(tags, func(tag string, _ int) (string, bool) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return "", false
		}
		return caser.String(tag), true
	})
	return lo.Uniq(normalized)
}
