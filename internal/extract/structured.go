package extract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonesrussell/north-cloud/procrawler/internal/domain"
	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/jonesrussell/north-cloud/procrawler/internal/normalize"
)

const (
	// StrategyStructuredContext names the embedded application-state strategy.
	StrategyStructuredContext = "structured_context"

	// contextSelector locates the embedded application-state container.
	contextSelector = "#hz-ctx"

	// ImageCDNTemplate renders a professional's image id into an absolute image URL.
	ImageCDNTemplate = "https://st.hzcdn.com/fimgs/%s_0-w240-h240-b0-p0.jpg"
)

// Store names inside data.stores.data of the application state.
const (
	professionalStore = "ProfessionalStore"
	userStore         = "UserStore"
)

// StructuredContext reads the application state the site embeds for hydration.
type StructuredContext struct {
	logger logger.Interface
}

// NewStructuredContext creates the structured-context strategy.
func NewStructuredContext(log logger.Interface) *StructuredContext {
	return &StructuredContext{logger: log}
}

// Name returns the strategy name.
func (s *StructuredContext) Name() string { return StrategyStructuredContext }

// Extract returns one record per entry of the professional store.
func (s *StructuredContext) Extract(doc *goquery.Document, pageURL string) []domain.Record {
	container := doc.Find(contextSelector).First()
	if container.Length() == 0 {
		return nil
	}
	raw := strings.TrimSpace(container.Text())
	if raw == "" {
		return nil
	}

	state, err := decodeJSON(raw)
	if err != nil {
		s.logger.Warn("Failed to parse structured context", "error", err, "url", pageURL)
		return nil
	}

	stores := found(state).Path("data", "stores", "data")
	professionals, ok := stores.Path(professionalStore, "data").Object()
	if !ok || len(professionals) == 0 {
		return nil
	}
	users := stores.Path(userStore, "data")

	ids := make([]string, 0, len(professionals))
	for id := range professionals {
		ids = append(ids, id)
	}
	sortIDs(ids)

	records := make([]domain.Record, 0, len(ids))
	for _, id := range ids {
		pro := found(professionals[id])
		if _, isObject := pro.Object(); !isObject {
			continue
		}
		user := absent
		if userID := pro.Get("userId").String(); userID != nil {
			user = users.Get(*userID)
		}
		records = append(records, buildProfessional(id, pro, user))
	}
	return records
}

func buildProfessional(id string, pro, user node) domain.Record {
	profileLink := coalesce(pro.firstString("profileUrl", "url"), user.firstString("profileUrl"))
	slug := user.firstString("userName", "slug")
	professionalID := id

	return domain.Record{
		Name:           coalesce(user.firstString("displayName"), pro.firstString("name", "proName")),
		Address:        pro.firstString("formattedAddress", "address"),
		City:           pro.firstString("city"),
		State:          pro.firstString("state", "stateCode"),
		Zip:            pro.firstString("zip", "zipCode"),
		Country:        pro.firstString("country"),
		Phone:          pro.firstString("formattedPhone", "phone"),
		Latitude:       pro.firstFloat("latitude", "lat"),
		Longitude:      pro.firstFloat("longitude", "lng"),
		Rating:         coalesce(normalize.DecodeTenthsRating(pro.Get("reviewRating").Int()), pro.firstFloat("averageRating", "rating")),
		ReviewCount:    pro.firstInt("numReviews", "reviewCount"),
		Description:    pro.firstString("aboutMe", "description"),
		ProfileURL:     normalize.BuildProfileURL(deref(profileLink), deref(slug), id),
		ImageURL:       imageURL(pro, user),
		ProfessionalID: &professionalID,
	}
}

// imageURL prefers an absolute image link, then the CDN path for an image id.
func imageURL(pro, user node) *string {
	for _, link := range []*string{
		pro.firstString("imageUrl", "logoUrl"),
		user.firstString("profileImageUrl"),
	} {
		if link == nil {
			continue
		}
		if abs := normalize.ToAbsoluteURL(*link, normalize.SiteURL); abs != nil {
			return abs
		}
	}
	imageID := coalesce(pro.firstString("profileImageId", "imageId"), user.firstString("profileImageId"))
	if imageID == nil {
		return nil
	}
	u := fmt.Sprintf(ImageCDNTemplate, *imageID)
	return &u
}

// sortIDs orders numeric ids numerically and everything else lexically.
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
