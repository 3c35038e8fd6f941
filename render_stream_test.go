package mdfmt

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderRequest(t *testing.T) {
	t.Parallel()
	src := "A short paragraph without any long words or hard line breaks.\n"
	var out bytes.Buffer
	if err := Render(RenderRequest{Reader: strings.NewReader(src), Writer: &out, Width: 30}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertText(t, out.String(), "A short paragraph without any\nlong words or hard line\nbreaks.\n")

	out.Reset()
	if err := Render(RenderRequest{Reader: strings.NewReader("  -   x\n"), Writer: &out}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertText(t, out.String(), "- x\n")
}

func TestRenderRequestFrontMatterAndSyntax(t *testing.T) {
	t.Parallel()
	s := DefaultSyntax()
	if err := s.RemoveSpan(SpanCore); err != nil {
		t.Fatalf("RemoveSpan: %v", err)
	}
	src := "---\ntitle: a very long title that is not wrapped\n---\n*one two*\n"
	var out bytes.Buffer
	err := Render(RenderRequest{
		Reader:      strings.NewReader(src),
		Writer:      &out,
		Width:       4,
		FrontMatter: true,
		Syntax:      s,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertText(t, out.String(), "---\ntitle: a very long title that is not wrapped\n---\n*one\ntwo*\n")
}

func TestRenderRequestErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		req  RenderRequest
		want error
	}{
		{name: "nil reader", req: RenderRequest{Writer: &bytes.Buffer{}}},
		{name: "nil writer", req: RenderRequest{Reader: strings.NewReader("x")}},
		{name: "negative width", req: RenderRequest{Reader: strings.NewReader("x"), Writer: &bytes.Buffer{}, Width: -2}},
		{
			name: "unknown width mode",
			req: RenderRequest{
				Reader:  strings.NewReader("x"),
				Writer:  &bytes.Buffer{},
				Options: []RenderOption{WithWidthMode(WidthMode(9))},
			},
		},
		{
			name: "invalid utf-8",
			req:  RenderRequest{Reader: strings.NewReader("a\xffb"), Writer: &bytes.Buffer{}},
			want: ErrInvalidUTF8,
		},
		{name: "write failure", req: RenderRequest{Reader: strings.NewReader("x\n"), Writer: failingWriter{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Render(tc.req)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestHTTPRender(t *testing.T) {
	t.Parallel()
	var accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("#   Remote   \n\none two three\n"))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := HTTPRender(context.Background(), HTTPRenderRequest{
		URL:    srv.URL,
		Client: srv.Client(),
		Writer: &out,
		Width:  8,
	})
	if err != nil {
		t.Fatalf("HTTPRender: %v", err)
	}
	assertText(t, out.String(), "# Remote\n\none two\nthree\n")
	if !strings.HasPrefix(accept, "text/markdown") {
		t.Fatalf("unexpected Accept header %q", accept)
	}
}

func TestHTTPRenderErrors(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name string
		req  HTTPRenderRequest
		want string
	}{
		{name: "missing url", req: HTTPRenderRequest{Writer: &bytes.Buffer{}}, want: "URL is required"},
		{name: "nil writer", req: HTTPRenderRequest{URL: srv.URL}, want: "Writer is nil"},
		{name: "bad scheme", req: HTTPRenderRequest{URL: "ftp://example.com/a.md", Writer: &bytes.Buffer{}}, want: "unsupported scheme"},
		{name: "status", req: HTTPRenderRequest{URL: srv.URL, Client: srv.Client(), Writer: &bytes.Buffer{}}, want: "404"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := HTTPRender(context.Background(), tc.req)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestHTTPRenderCanceled(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x\n"))
	}))
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := HTTPRender(ctx, HTTPRenderRequest{URL: srv.URL, Client: srv.Client(), Writer: &bytes.Buffer{}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
