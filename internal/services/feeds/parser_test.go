package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Test Show</title>
    <description>A show about testing</description>
    <itunes:author>Jane Tester</itunes:author>
    <item>
      <title>Episode One</title>
      <guid>ep-guid-1</guid>
      <description>First</description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
      <enclosure url="https://example.com/ep1.mp3" type="audio/mpeg" length="1000"/>
      <itunes:duration>1:02:03</itunes:duration>
    </item>
    <item>
      <title>Episode Two</title>
      <description>No guid, identity from the enclosure</description>
      <enclosure url="https://example.com/ep2.mp3" type="audio/mpeg" length="1000"/>
      <itunes:duration>45:30</itunes:duration>
    </item>
    <item>
      <title>Show notes only</title>
      <description>No enclosure at all</description>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Show</title>
  <entry><title>Entry</title></entry>
</feed>`

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatRSS, DetectFormat(sampleRSS))
	assert.Equal(t, FormatAtom, DetectFormat(sampleAtom))
	assert.Equal(t, FormatUnknown, DetectFormat("<html><body>not a feed</body></html>"))
	assert.Equal(t, FormatUnknown, DetectFormat(""))
}

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	podcast, err := parser.Parse("https://example.com/feed.xml", sampleRSS)
	require.NoError(t, err)

	assert.Equal(t, "Test Show", podcast.Title)
	assert.Equal(t, "Jane Tester", podcast.Author)
	assert.NotEmpty(t, podcast.ID)

	// The enclosure-less item is dropped
	require.Len(t, podcast.Episodes, 2)

	first := podcast.Episodes[0]
	assert.Equal(t, "ep-guid-1", first.ID, "GUID wins when present")
	assert.Equal(t, 3723, first.Duration, "1:02:03 in seconds")
	assert.Equal(t, "https://example.com/ep1.mp3", first.AudioURL)
	assert.False(t, first.PublishDate.IsZero())

	second := podcast.Episodes[1]
	assert.NotEmpty(t, second.ID, "enclosure hash stands in for a missing GUID")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2730, second.Duration)
}

func TestParser_ParseIsDeterministic(t *testing.T) {
	parser := NewParser()

	a, err := parser.Parse("https://example.com/feed.xml", sampleRSS)
	require.NoError(t, err)
	b, err := parser.Parse("https://example.com/feed.xml", sampleRSS)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.EpisodeIDs(), b.EpisodeIDs())
}

func TestParser_RejectsNonFeed(t *testing.T) {
	parser := NewParser()

	_, err := parser.Parse("https://example.com/page.html", "<html><body>hi</body></html>")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidFeed, apperrors.GetCode(err))
}

func TestParseITunesDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"3600", 3600},
		{"59:30", 3570},
		{"1:00:00", 3600},
		{"0:30", 30},
		{"", 0},
		{"abc", 0},
		{"1:2:3:4", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseITunesDuration(tc.raw), "duration %q", tc.raw)
	}
}
