package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	apperrors "go-career-scraper/internal/errors"
	"go-career-scraper/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTransport struct {
	from string
	to   []string
	msg  []byte
	err  error
}

func (f *fakeTransport) Send(_ context.Context, from string, to []string, msg io.Reader) error {
	if f.err != nil {
		return f.err
	}
	f.from, f.to = from, to
	data, err := io.ReadAll(msg)
	f.msg = data
	return err
}

func sampleDigest() Digest {
	return Digest{Sections: []Section{
		{Source: models.SourceDevsinc, Listings: []models.Listing{
			{Title: "Go <Engineer>", Link: "https://apply.workable.com/devsinc/j/1/", Source: models.SourceDevsinc, Country: "Pakistan", City: "Lahore"},
			{Title: "QA", Link: "https://apply.workable.com/devsinc/j/2/", Source: models.SourceDevsinc},
		}},
		{Source: models.SourceSystemsLtd},
	}}
}

func TestDigest_Subject(t *testing.T) {
	assert.Equal(t, "New Job Listings - Devsinc & Systems Ltd", sampleDigest().Subject())
	assert.Equal(t, "New Job Listings", Digest{}.Subject())
}

func TestDigest_RenderHTML(t *testing.T) {
	html, err := sampleDigest().RenderHTML()
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, "New Job Listings", doc.Find("h2").Text())
	assert.Equal(t, "Devsinc Job Listings", doc.Find("h3").Text())
	assert.Equal(t, 1, doc.Find("table").Length())

	rows := doc.Find("table tr")
	require.Equal(t, 3, rows.Length())

	first := rows.Eq(1).Find("td")
	assert.Equal(t, "Go <Engineer>", first.Eq(0).Text())
	link := first.Eq(1).Find("a")
	assert.Equal(t, "Apply Here", link.Text())
	href, _ := link.Attr("href")
	assert.Equal(t, "https://apply.workable.com/devsinc/j/1/", href)
	target, _ := link.Attr("target")
	assert.Equal(t, "_blank", target)

	second := rows.Eq(2).Find("td")
	assert.Equal(t, models.NotSpecified, second.Eq(2).Text())
	assert.Equal(t, models.NotSpecified, second.Eq(3).Text())

	assert.Equal(t, "No new job postings found for Systems Ltd.", doc.Find("p").First().Text())
	assert.NotContains(t, html, "<Engineer>")
}

func TestEmailNotifier_Notify(t *testing.T) {
	transport := &fakeTransport{}
	n := NewEmailNotifier("bot@example.com", "me@example.com", transport, zap.NewNop())
	n.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	require.NoError(t, n.Notify(context.Background(), sampleDigest()))
	assert.Equal(t, "bot@example.com", transport.from)
	assert.Equal(t, []string{"me@example.com"}, transport.to)

	mr, err := mail.CreateReader(bytes.NewReader(transport.msg))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "New Job Listings - Devsinc & Systems Ltd", subject)

	ct, _, err := mr.Header.ContentType()
	require.NoError(t, err)
	assert.Equal(t, "text/html", ct)

	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Devsinc Job Listings")
	assert.Contains(t, string(body), "Apply Here")
}

func TestEmailNotifier_TransportError(t *testing.T) {
	transport := &fakeTransport{err: errors.New("535 auth failed")}
	n := NewEmailNotifier("bot@example.com", "me@example.com", transport, zap.NewNop())

	err := n.Notify(context.Background(), sampleDigest())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeNotification, apperrors.TypeOf(err))
	assert.ErrorContains(t, err, "535 auth failed")
}
