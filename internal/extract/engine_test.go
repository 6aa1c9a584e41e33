package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/contact-scraper/internal/scraper"
)

func page(body string) scraper.PageContent {
	return scraper.PageContent{URL: "https://example.com", Body: body}
}

func TestExtractEmailsFromTextAndMailto(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`<html><body>
		<a href="mailto:a@b.com">Write us</a>
		<p>contact c@d.com</p>
	</body></html>`))
	require.ElementsMatch(t, []string{"a@b.com", "c@d.com"}, got.Emails)
}

func TestExtractEmailsDeduplicatesAcrossSources(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`<p>Reach Sales@Example.com today</p>
		<a href="mailto:Sales@Example.com">Sales@Example.com</a>`))
	require.Equal(t, []string{"Sales@Example.com"}, got.Emails, "case is preserved and the address appears once")
}

func TestExtractEmailsIgnoresScriptsAndEmptyMailto(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`<script>var x = "hidden@script.com";</script>
		<style>.a{content:"hidden@style.com"}</style>
		<a href="mailto:">empty</a>
		<p>visible@site.org</p>`))
	require.Equal(t, []string{"visible@site.org"}, got.Emails)
}

func TestExtractEmailsKeepsMailtoTargetVerbatim(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`<a href="mailto:help@site.com?subject=Hi">Help</a>`))
	require.Equal(t, []string{"help@site.com?subject=Hi"}, got.Emails)
}

func TestExtractEmailsSeparatesAdjacentBlocks(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`<div>info@site.com</div><div>About us</div>`))
	require.Equal(t, []string{"info@site.com"}, got.Emails)
}

func TestExtractPhonesCoversFormats(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`<ul>
		<li>Intl: +44 20 7946 0958</li>
		<li>Office: (555) 123-4567</li>
		<li>Dots: 555.987.6543</li>
		<li>Dashes: 555-222-3333</li>
	</ul>`))
	require.Contains(t, got.Phones, "555.987.6543")
	require.Contains(t, got.Phones, "555-222-3333")
	require.Contains(t, got.Phones, "(555) 123-4567")
	require.Contains(t, got.Phones, "+44 20 7946 0958")

	seen := map[string]int{}
	for _, p := range got.Phones {
		seen[p]++
	}
	for p, n := range seen {
		require.Equal(t, 1, n, "phone %q duplicated", p)
	}
}

func TestExtractPhonesEmptyWhenNoDigits(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`<html><head><title>About</title></head>
		<body><p>Contact hello@example.com for details.</p></body></html>`))
	require.NotNil(t, got.Phones)
	require.Empty(t, got.Phones)
	require.Equal(t, []string{"hello@example.com"}, got.Emails)
}

func TestExtractCategoriesAreIndependent(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`<p>Call 555-222-3333</p>`))
	require.NotEmpty(t, got.Phones)
	require.Empty(t, got.Emails)
	require.Empty(t, got.SocialLinks)
	require.Empty(t, got.Metadata)
}

func TestExtractSocialLinks(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`
		<a href="https://facebook.com/x">fb</a>
		<a href="https://twitter.com/y">tw</a>
		<a href="https://facebook.com/x">fb again</a>
		<a href="https://www.LinkedIn.com/company/acme">li</a>
		<a href="https://example.com/about">about</a>`))
	require.ElementsMatch(t, []string{
		"https://facebook.com/x",
		"https://twitter.com/y",
		"https://www.LinkedIn.com/company/acme",
	}, got.SocialLinks)
}

func TestExtractSocialLinksCustomPlatforms(t *testing.T) {
	t.Parallel()

	got := New(" GitHub ", "github", "").Extract(page(`
		<a href="https://github.com/acme">gh</a>
		<a href="https://facebook.com/x">fb</a>`))
	require.Equal(t, []string{"https://github.com/acme"}, got.SocialLinks)
}

func TestExtractMetadataLastValueWins(t *testing.T) {
	t.Parallel()

	got := New().Extract(page(`<html><head>
		<meta name="Description" content="first">
		<meta name="description" content="second">
		<meta name="keywords" content="">
		<meta property="og:title" content="ignored">
		<meta charset="utf-8">
	</head></html>`))
	require.Equal(t, map[string]string{
		"description": "second",
		"keywords":    "",
	}, got.Metadata)
}

func TestExtractEmptyAndMalformedMarkup(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"", "<<<>>>", "<html><body><a href=", "plain text only"} {
		got := New().Extract(page(body))
		require.NotNil(t, got.Emails)
		require.NotNil(t, got.Phones)
		require.NotNil(t, got.SocialLinks)
		require.NotNil(t, got.Metadata)
		require.Empty(t, got.Emails)
		require.Empty(t, got.Phones)
		require.Empty(t, got.SocialLinks)
		require.Empty(t, got.Metadata)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	t.Parallel()

	body := `<meta name="author" content="Acme">
		<p>mail: a@b.com, x@y.io; call 555-222-3333 or 555.987.6543</p>
		<a href="https://instagram.com/acme">ig</a><a href="mailto:z@w.net">z</a>`
	e := New()
	first := e.Extract(page(body))
	for i := 0; i < 10; i++ {
		require.Equal(t, first, e.Extract(page(body)))
	}
}
