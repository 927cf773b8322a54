package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/revanced-builder/internal/httpclient"
)

const sampleManifest = `# Patches

The table below lists every available patch.

| Patch | Description | Package | Version |
|:-----:|:-----------:|:-------:|:-------:|
| ` + "`general-ads`" + ` | Removes general ads. | ` + "`com.google.android.youtube`" + ` | all |
| ` + "`microg-support`" + ` | Allows running without root. | ` + "`com.google.android.youtube`" + ` | 17.3.4 |
| ` + "`hide-shorts`" + ` | Hides the shorts shelf. | ` + "`com.google.android.youtube`" + ` | 17.3.4 |
| ` + "`background-play`" + ` | Enables background playback. | ` + "`com.google.android.apps.youtube.music`" + ` | 5.14.2 |

Broken row below must be ignored:

| only | three | cells |
`

func TestLoad_PartitionsByTargetPackage(t *testing.T) {
	t.Parallel()

	catalog := Load(sampleManifest)

	youtube := catalog.Patches(YouTube)
	require.Len(t, youtube, 3)
	require.Equal(t, "general-ads", youtube[0].Name)
	require.Equal(t, "Removes general ads.", youtube[0].Description)
	require.Equal(t, "com.google.android.youtube", youtube[0].App)
	require.Equal(t, "all", youtube[0].Version)

	music := catalog.Patches(YouTubeMusic)
	require.Len(t, music, 1)
	require.Equal(t, "background-play", music[0].Name)
	require.Equal(t, "5.14.2", music[0].Version)
}

func TestLoad_IgnoresNonTableLines(t *testing.T) {
	t.Parallel()

	catalog := Load("no table here\n| a | b |\n| one | two | three | four | five |\n")

	require.Empty(t, catalog.Patches(YouTube))
	require.Empty(t, catalog.Patches(YouTubeMusic))
}

func TestLoad_SingleRowPerVariant(t *testing.T) {
	t.Parallel()

	manifest := `| Patch | Description | Package | Version |
|:-----:|:-----------:|:-------:|:-------:|
| hide-shorts | Hides the shorts shelf. | com.google.android.youtube | 17.3.4 |
| background-play | Enables background playback. | com.google.android.apps.youtube.music | 5.14.2 |
`

	catalog := Load(manifest)
	require.Len(t, catalog.Patches(YouTube), 1)
	require.Len(t, catalog.Patches(YouTubeMusic), 1)
}

func TestVersionFor(t *testing.T) {
	t.Parallel()

	catalog := Load(sampleManifest)

	version, err := catalog.VersionFor(YouTube)
	require.NoError(t, err)
	require.Equal(t, "17.3.4", version)

	version, err = catalog.VersionFor(YouTubeMusic)
	require.NoError(t, err)
	require.Equal(t, "5.14.2", version)
}

func TestVersionFor_NoConcreteVersion(t *testing.T) {
	t.Parallel()

	manifest := `| Patch | Description | Package | Version |
|:-----:|:-----------:|:-------:|:-------:|
| universal | Works everywhere. | com.google.android.youtube | all |
`

	_, err := Load(manifest).VersionFor(YouTube)
	require.ErrorIs(t, err, ErrNoVersionFound)
}

func TestParseVariant(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		answer  string
		want    Variant
		wantErr bool
	}{
		{name: "youtube", answer: "yt", want: YouTube},
		{name: "youtube uppercase", answer: "YT", want: YouTube},
		{name: "music with whitespace", answer: " YTM\n", want: YouTubeMusic},
		{name: "unknown", answer: "vimeo", wantErr: true},
		{name: "empty", answer: "", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			variant, err := ParseVariant(tc.answer)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownVariant)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, variant)
		})
	}
}

func TestVariantSlug(t *testing.T) {
	t.Parallel()

	require.Equal(t, "youtube", YouTube.Slug())
	require.Equal(t, "youtube-music", YouTubeMusic.Slug())
}

func TestFetch(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.md", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleManifest))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := httpclient.New(5*time.Second, "Mozilla")

	catalog, err := Fetch(context.Background(), client, server.URL+"/manifest.md")
	require.NoError(t, err)
	require.Len(t, catalog.Patches(YouTube), 3)

	_, err = Fetch(context.Background(), client, server.URL+"/missing")
	require.Error(t, err)
}
