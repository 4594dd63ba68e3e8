package httpd

import (
	"errors"
	"strconv"
)

// ResponseSize is the capacity of the response buffer.
const ResponseSize = 1024

// ErrResponseTooLarge means the rendered response does not fit the buffer.
var ErrResponseTooLarge = errors.New("httpd: response exceeds buffer")

const pageBody = `<!DOCTYPE html>
<html>
<head>
<title>Sistema de Alarme</title>
<style>
body { background-color: #b5e5fb; font-family: Arial, sans-serif; text-align: center; margin-top: 50px; }
h1 { font-size: 64px; margin-bottom: 30px; }
button { background-color: LightGray; font-size: 36px; margin: 10px; padding: 20px 40px; border-radius: 10px; }
</style>
</head>
<body>
<h1>Sistema de Alarme</h1>
<form action="./alarm_on"><button>Ativar Alarme</button></form>
<form action="./alarm_off"><button>Desativar Alarme</button></form>
</body>
</html>
`

// RenderResponse renders the control page response into buf, reusing its
// storage. buf must have capacity for the whole response.
func RenderResponse(buf []byte) ([]byte, error) {
	out := buf[:0]
	out = append(out, "HTTP/1.1 200 OK\r\n"...)
	out = append(out, "Content-Type: text/html\r\n"...)
	out = append(out, "Content-Length: "...)
	out = strconv.AppendInt(out, int64(len(pageBody)), 10)
	out = append(out, "\r\n\r\n"...)
	if len(out)+len(pageBody) > cap(buf) {
		return nil, ErrResponseTooLarge
	}
	out = append(out, pageBody...)
	return out, nil
}
