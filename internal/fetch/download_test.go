package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/realms-launcher/internal/fetch"
)

var _ = Describe("Downloader", func() {
	Describe("Fetch", func() {
		It("downloads file successfully", func() {
			server := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Length", "13")
					_, _ = w.Write([]byte("file contents"))
				}),
			)
			defer server.Close()

			d := fetch.NewDownloader(server.Client())
			dest := filepath.Join(GinkgoT().TempDir(), "downloaded")

			Expect(d.Fetch(context.Background(), server.URL, dest, nil)).To(Succeed())

			data, err := os.ReadFile(dest)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("file contents"))
		})

		It("reports progress once per chunk", func() {
			body := strings.Repeat("x", 3*fetch.ChunkSize)

			server := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(body))
				}),
			)
			defer server.Close()

			d := fetch.NewDownloader(server.Client())
			dest := filepath.Join(GinkgoT().TempDir(), "downloaded")

			var last, calls int64

			err := d.Fetch(context.Background(), server.URL, dest, func(received, total int64) {
				calls++
				Expect(received).To(BeNumerically(">", last))
				Expect(total).To(Equal(int64(len(body))))
				last = received
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(last).To(Equal(int64(len(body))))
			Expect(calls).To(BeNumerically(">=", 3))
		})

		It("reports a zero total when the length is unknown", func() {
			server := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.(http.Flusher).Flush()
					_, _ = w.Write([]byte("chunked body"))
				}),
			)
			defer server.Close()

			d := fetch.NewDownloader(server.Client())
			dest := filepath.Join(GinkgoT().TempDir(), "downloaded")

			var totals []int64

			Expect(d.Fetch(context.Background(), server.URL, dest, func(_, total int64) {
				totals = append(totals, total)
			})).To(Succeed())

			Expect(totals).NotTo(BeEmpty())
			Expect(totals).To(HaveEach(int64(0)))
		})

		It("returns an HTTPError on 404", func() {
			server := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusNotFound)
				}),
			)
			defer server.Close()

			d := fetch.NewDownloader(server.Client())
			dest := filepath.Join(GinkgoT().TempDir(), "downloaded")

			err := d.Fetch(context.Background(), server.URL, dest, nil)
			Expect(err).To(HaveOccurred())
			Expect(fetch.IsHTTPStatus(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("404"))

			_, statErr := os.Stat(dest)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})

		It("returns error on context cancellation", func() {
			server := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte("content"))
				}),
			)
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			d := fetch.NewDownloader(server.Client())
			dest := filepath.Join(GinkgoT().TempDir(), "downloaded")

			err := d.Fetch(ctx, server.URL, dest, nil)
			Expect(err).To(HaveOccurred())
			Expect(fetch.IsHTTPStatus(err)).To(BeFalse())
		})
	})

	Describe("Percent", func() {
		It("reports 0 for an unknown total", func() {
			Expect(fetch.Percent(500, 0)).To(Equal(0.0))
		})

		It("computes the percentage", func() {
			Expect(fetch.Percent(25, 100)).To(Equal(25.0))
		})

		It("caps at 100", func() {
			Expect(fetch.Percent(150, 100)).To(Equal(100.0))
		})
	})
})
