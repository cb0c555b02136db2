package version_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/version"
)

var _ = Describe("Client", func() {
	It("decodes the metadata document", func() {
		server := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{
					"version": "1.2.0",
					"launcher_version": "1.1.0",
					"required_base_version": "1.0",
					"current_base_version": "1.0"
				}`))
			}),
		)
		defer server.Close()

		info, err := version.NewClient(server.URL, server.Client(), 0).Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Version).To(Equal("1.2.0"))
		Expect(info.LauncherVersion).To(Equal("1.1.0"))
		Expect(info.BaseVersionsMatch()).To(BeTrue())
	})

	It("defaults missing fields to 0.0.0", func() {
		info, err := version.DecodeRemoteInfo(strings.NewReader(`{"version": "2.0"}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Version).To(Equal("2.0"))
		Expect(info.LauncherVersion).To(Equal(version.DefaultVersion))
		Expect(info.RequiredBaseVersion).To(Equal(version.DefaultVersion))
		Expect(info.CurrentBaseVersion).To(Equal(version.DefaultVersion))
	})

	It("returns ErrMetadataUnavailable on non-2xx", func() {
		server := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}),
		)
		defer server.Close()

		_, err := version.NewClient(server.URL, server.Client(), 0).Fetch(context.Background())
		Expect(err).To(MatchError(version.ErrMetadataUnavailable))
		Expect(err.Error()).To(ContainSubstring("503"))
	})

	It("gives up after the timeout", func() {
		release := make(chan struct{})

		server := httptest.NewServer(
			http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}),
		)
		defer server.Close()
		defer close(release)

		client := version.NewClient(server.URL, server.Client(), 50*time.Millisecond)

		_, err := client.Fetch(context.Background())
		Expect(err).To(HaveOccurred())
	})
})
