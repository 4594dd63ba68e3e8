package httpd

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestRenderResponse(t *testing.T) {
	var buf [ResponseSize]byte
	resp, err := RenderResponse(buf[:])
	if err != nil {
		t.Fatalf("RenderResponse: %v", err)
	}
	if len(resp) > ResponseSize {
		t.Fatalf("response is %d bytes, buffer is %d", len(resp), ResponseSize)
	}

	s := string(resp)
	if !strings.HasPrefix(s, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("bad status line: %q", s[:20])
	}
	if !strings.Contains(s, "Content-Type: text/html\r\n") {
		t.Error("missing Content-Type header")
	}

	head, body, ok := strings.Cut(s, "\r\n\r\n")
	if !ok {
		t.Fatal("no header terminator")
	}
	if !strings.Contains(head, "Content-Length: "+strconv.Itoa(len(body))) {
		t.Errorf("Content-Length does not match body of %d bytes: %q", len(body), head)
	}
	for _, want := range []string{"<title>Sistema de Alarme</title>", `action="./alarm_on"`, `action="./alarm_off"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderResponseReusesBuffer(t *testing.T) {
	var buf [ResponseSize]byte
	resp, err := RenderResponse(buf[:])
	if err != nil {
		t.Fatal(err)
	}
	if &resp[0] != &buf[0] {
		t.Error("response was not rendered into the supplied buffer")
	}

	again, _ := RenderResponse(buf[:])
	if !bytes.Equal(resp, again) {
		t.Error("second render differs")
	}
}

func TestRenderResponseTooLarge(t *testing.T) {
	small := make([]byte, 0, 64)
	_, err := RenderResponse(small)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("err = %v, want ErrResponseTooLarge", err)
	}
}
