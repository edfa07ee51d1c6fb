package crawler_test

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// professionals returns n records with ids from..from+n-1.
func professionals(from, n int) []domain.Record {
	out := make([]domain.Record, 0, n)
	for i := from; i < from+n; i++ {
		id := fmt.Sprintf("%d", i)
		out = append(out, domain.Record{
			Name:           ptr("Pro " + id),
			ProfileURL:     ptr("https://www.houzz.com/professionals/pf~" + id),
			ProfessionalID: ptr(id),
		})
	}
	return out
}

// listingPage renders a page whose structured context holds entities with ids from..from+n-1.
func listingPage(from, n int) string {
	entries := make([]string, 0, n)
	users := make([]string, 0, n)
	for i := from; i < from+n; i++ {
		entries = append(entries, fmt.Sprintf(`"%d":{"userId":%d,"city":"Austin","reviewRating":45}`, i, i+10000))
		users = append(users, fmt.Sprintf(`"%d":{"displayName":"Pro %d","userName":"pro-%d"}`, i+10000, i, i))
	}
	return `<html><head><title>Professionals</title>
<script id="hz-ctx" type="application/json">{"data":{"stores":{"data":{` +
		`"ProfessionalStore":{"data":{` + strings.Join(entries, ",") + `}},` +
		`"UserStore":{"data":{` + strings.Join(users, ",") + `}}` +
		`}}}}</script></head><body></body></html>`
}
