package s3

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ticketdash/internal/config"
	"ticketdash/internal/connectors"
)

const listBody = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>tickets</Name>
  <Prefix>site-a/</Prefix>
  <KeyCount>3</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>site-a/</Key><Size>0</Size></Contents>
  <Contents><Key>site-a/T-001.json</Key><Size>20</Size></Contents>
  <Contents><Key>site-a/T-001.pdf</Key><Size>900</Size></Contents>
</ListBucketResult>`

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewConnector(context.Background(), config.Config{
		S3Endpoint: srv.URL,
		S3Region:   "us-east-1",
		S3Bucket:   "tickets",
		S3Key:      "key",
		S3Secret:   "secret",
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestListUsesPrefix(t *testing.T) {
	var prefix string
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		prefix = r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(listBody))
	})

	files, err := c.List(context.Background(), "/site-a/")
	if err != nil {
		t.Fatal(err)
	}
	if prefix != "site-a/" {
		t.Fatalf("prefix=%q", prefix)
	}
	if len(files) != 2 {
		t.Fatalf("files=%+v", files)
	}
	if files[0].ID != "site-a/T-001.json" || files[0].Name != "T-001.json" || files[0].Provider != connectors.ProviderS3 {
		t.Fatalf("file=%+v", files[0])
	}
}

func TestDownload(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/tickets/site-a/T-001.json") {
			_, _ = w.Write([]byte(`{"plate":"A"}`))
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
	})

	body, err := c.Download(context.Background(), "site-a/T-001.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"plate":"A"}` {
		t.Fatalf("body=%s", body)
	}

	if _, err := c.Download(context.Background(), "site-a/none.json"); !errors.Is(err, connectors.ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestNewConnectorRequiresBucket(t *testing.T) {
	if _, err := NewConnector(context.Background(), config.Config{}); err == nil {
		t.Fatal("expected error")
	}
}
