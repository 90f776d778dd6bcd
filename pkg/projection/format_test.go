package projection

import (
	"bytes"
	"go/format"
	"os"
	"testing"
)

func TestProjectorSourceIsGofmted(t *testing.T) {
	src, err := os.ReadFile("projector.go")
	if err != nil {
		t.Fatal(err)
	}
	formatted, err := format.Source(src)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(src, formatted) {
		t.Error("projector.go is not gofmt formatted")
	}
}
