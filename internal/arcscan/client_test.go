package arcscan_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Somtiee/swaparc/internal/arcscan"
)

const pool = "0x2F4490e7c6F3DaC23ffEe6e71bFcb5d1CCd7d4eC"

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "account" || q.Get("action") != "txlist" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("address") != pool {
			t.Errorf("expected pool address, got %s", q.Get("address"))
		}
		if q.Get("startblock") != "100" {
			t.Errorf("expected startblock 100, got %s", q.Get("startblock"))
		}
		if q.Get("sort") != "asc" {
			t.Errorf("expected ascending sort, got %s", q.Get("sort"))
		}

		w.Write([]byte(`{
			"status": "1",
			"message": "OK",
			"result": [
				{"hash": "0xaaa", "from": "0xABC", "to": "` + pool + `", "input": "0x", "blockNumber": "100", "timeStamp": "1700000000"},
				{"hash": "0xbbb", "from": "0xDEF", "to": "` + pool + `", "input": "0xdeadbeef", "blockNumber": "107", "timeStamp": "1700000060"}
			]
		}`))
	}))
	defer srv.Close()

	client := arcscan.NewClient(srv.URL, pool)
	txs, err := client.FetchPage(context.Background(), 100)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Block() != 100 || txs[1].Block() != 107 {
		t.Errorf("unexpected block numbers: %d, %d", txs[0].Block(), txs[1].Block())
	}
	if txs[0].InputBytes() != nil {
		t.Error("expected nil input bytes for 0x input")
	}
	if got := txs[1].InputBytes(); len(got) != 4 {
		t.Errorf("expected 4 input bytes, got %d", len(got))
	}
	if txs[0].Time().Unix() != 1700000000 {
		t.Errorf("unexpected timestamp: %v", txs[0].Time())
	}
}

func TestFetchPageEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "0", "message": "No transactions found", "result": []}`))
	}))
	defer srv.Close()

	client := arcscan.NewClient(srv.URL, pool)
	txs, err := client.FetchPage(context.Background(), 500)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if txs != nil {
		t.Errorf("expected nil page, got %d transactions", len(txs))
	}
}

func TestFetchPageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := arcscan.NewClient(srv.URL, pool)
	if _, err := client.FetchPage(context.Background(), 0); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestTransactionMalformedFields(t *testing.T) {
	tx := arcscan.Transaction{BlockNumber: "not-a-number", TimeStamp: "also-not", Input: "0xzz"}
	if tx.Block() != 0 {
		t.Errorf("expected block 0 for malformed number, got %d", tx.Block())
	}
	if !tx.Time().IsZero() {
		t.Errorf("expected zero time for malformed timestamp, got %v", tx.Time())
	}
	if tx.InputBytes() != nil {
		t.Error("expected nil bytes for malformed hex input")
	}
}
