package handler

import (
	"fmt"
	"net/http"
)

const indexPage = `<!DOCTYPE html>
<html>
<head>
    <title>打单服务 %s</title>
    <style>
        body, html {
            height: 100%%;
            margin: 0;
            display: flex;
            justify-content: center;
            align-items: center;
        }
        .welcome {
            color: red;
            font-weight: bold;
            font-size: 50px;
        }
    </style>
</head>
<body>
    <div class="welcome">欢迎来到打单服务!</div>
</body>
</html>
`

func IndexHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, indexPage, version)
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
