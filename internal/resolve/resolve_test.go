package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/revanced-builder/internal/catalog"
	"github.com/oshokin/revanced-builder/internal/httpclient"
)

func testClient() *httpclient.Client {
	return httpclient.New(5*time.Second, "Mozilla")
}

func TestMirrorAPK(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/apk/google-inc/youtube-music/youtube-music-5-14-02-release/youtube-music-5-14-02-android-apk-download/",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><body>
				<a class="downloadButton" href="/decoy/">Variants</a>
				<a class="downloadButton accent_bg" href="/youtube-music/confirm/">Download APK</a>
			</body></html>`))
		})
	mux.HandleFunc("/youtube-music/confirm/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<div class="card"></div>
			<p class="notes"><span>Your download will begin shortly.
				<a rel="nofollow" href="/dl/youtube-music.apk">here</a></span></p>
		</body></html>`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	resolver := MirrorAPK(testClient(), server.URL, catalog.YouTubeMusic, "5.14.2")

	url, err := resolver(context.Background())
	require.NoError(t, err)
	require.Equal(t, server.URL+"/dl/youtube-music.apk", url)
}

// The mux route doubles as the slug assertion: a wrong padding would request
// a path nothing serves.
func TestMirrorAPK_SlugPadding(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/apk/google-inc/youtube/youtube-17-03-04-release/youtube-17-03-04-android-apk-download/",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<a class="accent_bg" href="/confirm/">Download</a>`))
		})
	mux.HandleFunc("/confirm/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<p class="notes"><a href="/dl/youtube.apk">here</a></p>`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	resolver := MirrorAPK(testClient(), server.URL, catalog.YouTube, "17.3.4")

	url, err := resolver(context.Background())
	require.NoError(t, err)
	require.Equal(t, server.URL+"/dl/youtube.apk", url)
}

func TestMirrorAPK_MissingDownloadButton(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/elsewhere/">plain link</a></body></html>`))
	}))
	defer server.Close()

	resolver := MirrorAPK(testClient(), server.URL, catalog.YouTube, "17.3.4")

	_, err := resolver(context.Background())
	require.ErrorIs(t, err, errNoDownloadButton)
	require.Contains(t, err.Error(), "17-03-04")
}

func TestLatestReleaseAsset(t *testing.T) {
	t.Parallel()

	const releasePage = `<html><body><ul>
		<li class="Box-row">
			<div><span class="octicon"></span><a href="/dl/revanced-cli-all.jar">revanced-cli-all.jar</a></div>
			<div>12.3 MB</div>
		</li>
		<li class="Box-row">
			<div><span class="octicon"></span><a href="/dl/revanced-cli.jar">revanced-cli.jar</a></div>
			<div>11.8 MB</div>
		</li>
		<li class="Box-row">
			<div><span class="octicon"></span><a href="/dl/source.zip">Source code (zip)</a></div>
		</li>
		<li class="Box-row">
			<div><span class="octicon"></span><a href="/dl/source.tar.gz">Source code (tar.gz)</a></div>
		</li>
	</ul></body></html>`

	mux := http.NewServeMux()
	mux.HandleFunc("/revanced/revanced-cli/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(releasePage))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	resolver := LatestReleaseAsset(testClient(), server.URL, "revanced/revanced-cli")

	url, err := resolver(context.Background())
	require.NoError(t, err)
	require.Equal(t, server.URL+"/dl/revanced-cli.jar", url)
}

func TestLatestReleaseAsset_OnlySourceArchives(t *testing.T) {
	t.Parallel()

	const releasePage = `<ul>
		<li class="Box-row"><div><span></span><a href="/dl/source.zip">zip</a></div></li>
		<li class="Box-row"><div><span></span><a href="/dl/source.tar.gz">tar</a></div></li>
	</ul>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(releasePage))
	}))
	defer server.Close()

	resolver := LatestReleaseAsset(testClient(), server.URL, "revanced/revanced-cli")

	_, err := resolver(context.Background())
	require.ErrorIs(t, err, errNoReleaseAssets)
}

func TestVersionSlug(t *testing.T) {
	t.Parallel()

	require.Equal(t, "17-03-04", versionSlug("17.3.4"))
	require.Equal(t, "5-14-02", versionSlug("5.14.2"))
	require.Equal(t, "17-26-35", versionSlug("17.26.35"))
	require.Equal(t, "17", versionSlug("17"))
}
