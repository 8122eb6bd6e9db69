package excel

import (
	"errors"
	"testing"

	"github.com/extrame/xls"
)

func TestReadXLSRecoversFromPanic(t *testing.T) {
	orig := openXLS
	t.Cleanup(func() { openXLS = orig })
	openXLS = func(string) (*xls.WorkBook, error) {
		panic("bad sector chain")
	}

	wb, err := readXLS("corrupt.xls")
	if wb != nil {
		t.Fatalf("workbook=%v, want nil", wb)
	}
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("err=%v, want ErrMalformedInput", err)
	}
	var le *LoadError
	if !errors.As(err, &le) || le.Path != "corrupt.xls" {
		t.Fatalf("err=%v, want LoadError for corrupt.xls", err)
	}
}
