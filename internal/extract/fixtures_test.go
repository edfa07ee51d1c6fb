package extract_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://www.houzz.com/professionals/kitchen-remodeling/austin-tx?fi=15"

const structuredContextScript = `<script id="hz-ctx" type="application/json">
{"data":{"stores":{"data":{
  "ProfessionalStore":{"data":{
    "10":{"userId":501,"formattedAddress":"12 Oak St","city":"Austin","stateCode":"TX","zip":"78701",
          "country":"US","formattedPhone":"(512) 555-0100","latitude":30.27,"longitude":-97.74,
          "reviewRating":49,"numReviews":37,"aboutMe":"Kitchens since 1998","profileImageId":"abc123"},
    "9":{"userId":"502","name":"Fallback Name","averageRating":4.5,"reviewCount":"8",
         "imageUrl":"//st.hzcdn.com/logo.png"},
    "11":"not an object"
  }},
  "UserStore":{"data":{
    "501":{"displayName":"Acme Kitchens","userName":"acme-kitchens"},
    "502":{"profileUrl":"/pro/beta-builders"}
  }},
  "ViewProfessionalsStore":{"data":{"paginationObject":{"offset":15}}}
}}}}
</script>`

const linkedDataScripts = `<script type="application/ld+json">{not json</script>
<script type="application/ld+json">
[{"@type":"LocalBusiness","name":"Gamma Remodel","telephone":"512-555-0199",
  "address":{"streetAddress":"1 Main St","addressLocality":"Austin","addressRegion":"TX","postalCode":"78702","addressCountry":{"name":"US"}},
  "geo":{"latitude":"30.1","longitude":"-97.7"},
  "aggregateRating":{"ratingValue":"4.8","reviewCount":"12"},
  "url":"/pro/gamma","image":{"@type":"ImageObject","url":"https://img.test/g.jpg"}},
 {"@type":"BreadcrumbList","name":"ignored"}]
</script>
<script type="application/ld+json">
{"@graph":[{"@type":["Organization","LocalBusiness"],"name":"Delta Design","sameAs":["https://delta.test"],"address":"5 Elm St"}]}
</script>`

const markupCards = `<a class="hz-pro-ctl" href="/pro/epsilon">
  <span class="hz-track-me">Epsilon Homes</span>
  <span class="hz-star-rating">★★★★★ 4.7</span>
  <span class="hz-star-rate__review-string">23 Reviews</span>
  <span>701 Pine Rd</span>
  <span>Austin, TX 78703</span>
  <span>Extra line</span>
</a>
<a class="hz-pro-ctl" href="https://other.test/zeta">
  <span>Zeta Build</span>
  <div class="pro-rating">Rated 4.2</div>
  <div class="num-reviews">(5)</div>
</a>
<div class="hz-pro-ctl"><em class="pro-rating">3.9</em></div>
<div class="hz-pro-ctl"></div>`

func page(t *testing.T, parts ...string) *goquery.Document {
	t.Helper()
	html := "<html><head><title>Professionals</title></head><body>" + strings.Join(parts, "\n") + "</body></html>"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}
