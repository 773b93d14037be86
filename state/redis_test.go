package state

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisStoreStyleRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, "test:", 3600)

	hash := styleHash("b", "<b>", "</b>")
	payload := `{"open":"<b>","close":"</b>"}`
	mock.ExpectSetNX("test:style:b:"+hash, payload, 3600*time.Second).SetVal(true)

	got, err := store.Style("b", "<b>", "</b>")
	if err != nil {
		t.Fatalf("Style: %v", err)
	}
	if got != hash {
		t.Errorf("got hash %q, want %q", got, hash)
	}

	mock.ExpectGet("test:style:b:" + hash).SetVal(payload)
	open, close, ok, err := store.StyleByHash("b", hash)
	if err != nil {
		t.Fatalf("StyleByHash: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if open != "<b>" || close != "</b>" {
		t.Errorf("got (%q, %q)", open, close)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisStoreStyleByHashMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, "test:", 0)

	mock.ExpectGet("test:style:b:missing").RedisNil()
	_, _, ok, err := store.StyleByHash("b", "missing")
	if err != nil {
		t.Fatalf("StyleByHash: %v", err)
	}
	if ok {
		t.Error("expected miss")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisStoreFormat(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStoreFromClient(db, "test:", 0)

	mock.ExpectSet("test:format", "docx", time.Duration(0)).SetVal("OK")
	store.SetFormat("docx")

	mock.ExpectGet("test:format").SetVal("docx")
	if got := store.Format(); got != "docx" {
		t.Errorf("got %q", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
