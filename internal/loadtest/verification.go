package loadtest

import (
	"errors"
	"fmt"
	"sort"
)

// verify checks that no request_id was given more than one ticket, that
// every 202 corresponds to a distinct request_id and that all tickets settled.
func verify(rep Report) error {
	var errs []error

	ids := make([]string, 0, len(rep.Tickets))
	for id := range rep.Tickets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if refs := rep.Tickets[id]; len(refs) > 1 {
			errs = append(errs, fmt.Errorf("request_id %s has %d tickets: %v", id, len(refs), refs))
		}
	}
	if rep.Accepted != len(rep.Tickets) {
		errs = append(errs, fmt.Errorf("%d requests accepted but %d request_ids hold tickets", rep.Accepted, len(rep.Tickets)))
	}
	if rep.Unsettled > 0 {
		errs = append(errs, fmt.Errorf("%d tickets still pending", rep.Unsettled))
	}
	if rep.Failed > 0 {
		errs = append(errs, fmt.Errorf("%d submissions failed", rep.Failed))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrVerification, errors.Join(errs...))
}
