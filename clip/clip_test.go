package clip

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReadImagePicksFirstImageItem(t *testing.T) {
	m := NewMemory()
	m.Set(
		Item{Type: "text/plain", Data: []byte("not this")},
		Item{Type: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
		Item{Type: "image/jpeg", Data: []byte("later image ignored")},
	)
	g := NewGateway(m)
	defer g.Close()

	data, err := g.ReadImage()
	if err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	if !bytes.Equal(data, []byte{0x89, 'P', 'N', 'G'}) {
		t.Errorf("ReadImage returned %q, want the first image item", data)
	}
}

func TestReadImageNoImageItem(t *testing.T) {
	m := NewMemory()
	m.Set(Item{Type: "text/plain", Data: []byte("hello")})
	g := NewGateway(m)
	defer g.Close()

	if _, err := g.ReadImage(); !errors.Is(err, ErrEmpty) {
		t.Errorf("ReadImage error = %v, want ErrEmpty", err)
	}
}

func TestReadImageEmptyClipboard(t *testing.T) {
	g := NewGateway(NewMemory())
	defer g.Close()

	if _, err := g.ReadImage(); !errors.Is(err, ErrEmpty) {
		t.Errorf("ReadImage error = %v, want ErrEmpty", err)
	}
}

func TestReadImageBackendFailure(t *testing.T) {
	m := NewMemory()
	m.ReadErr = ErrPermissionDenied
	g := NewGateway(m)
	defer g.Close()

	if _, err := g.ReadImage(); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("ReadImage error = %v, want ErrPermissionDenied", err)
	}
}

func TestWriteImageRoundTrip(t *testing.T) {
	m := NewMemory()
	g := NewGateway(m)
	defer g.Close()

	png := []byte("fake png bytes")
	if err := g.WriteImage(png); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	data, err := g.ReadImage()
	if err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	if !bytes.Equal(data, png) {
		t.Error("read back different bytes than written")
	}
}

func TestWriteImageBackendFailure(t *testing.T) {
	m := NewMemory()
	m.WriteErr = ErrUnavailable
	g := NewGateway(m)
	defer g.Close()

	if err := g.WriteImage([]byte("x")); !errors.Is(err, ErrUnavailable) {
		t.Errorf("WriteImage error = %v, want ErrUnavailable", err)
	}
}

func TestSnapshotRecordsTypes(t *testing.T) {
	m := NewMemory()
	m.Set(
		Item{Type: "text/plain", Data: []byte("a")},
		Item{Type: "image/png", Data: []byte("b")},
	)
	g := NewGateway(m)
	defer g.Close()

	if _, err := g.ReadImage(); err != nil {
		t.Fatalf("ReadImage: %v", err)
	}

	snap := g.LastSnapshot()
	if snap.Op != "read" {
		t.Errorf("snapshot op = %q, want read", snap.Op)
	}
	if len(snap.Types) != 2 || snap.Types[0] != "text/plain" || snap.Types[1] != "image/png" {
		t.Errorf("snapshot types = %v", snap.Types)
	}
	if snap.When.IsZero() {
		t.Error("snapshot timestamp not set")
	}
	if !strings.Contains(snap.Summary(), "image/png") {
		t.Errorf("summary %q does not list types", snap.Summary())
	}
}

func TestSnapshotEmptySummary(t *testing.T) {
	g := NewGateway(NewMemory())
	defer g.Close()

	_, _ = g.ReadImage()
	if got := g.LastSnapshot().Summary(); got != "read: empty clipboard" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestMemorySetBypassesWriteErr(t *testing.T) {
	m := NewMemory()
	m.WriteErr = ErrUnavailable
	m.Set(Item{Type: "image/png", Data: []byte("x")})

	items, err := m.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("len(items) = %d, want 1", len(items))
	}
}
