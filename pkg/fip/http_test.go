package fip

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGetReturnsStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	prog, err := ParseFile("test.fip", `http.get!(url)`)
	require.NoError(t, err)
	env := StdEnv().Child()
	require.NoError(t, env.Define("url", StringValue{Val: server.URL}, Location{}))

	ev := NewEvaluator(context.Background(), nil)
	result, err := ev.EvalProgram(prog, env)
	require.NoError(t, err)

	obj := result.(*ObjectValue)
	status, _ := obj.Get("status")
	body, _ := obj.Get("body")
	assert.Equal(t, NumberValue{Val: 200}, status)
	assert.Equal(t, StringValue{Val: "hello"}, body)
}

func TestHTTPPostSendsBody(t *testing.T) {
	var receivedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		receivedBody = string(b)
		assert.Equal(t, "POST", r.Method)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	prog, err := ParseFile("test.fip", `http.post!(url, "payload")`)
	require.NoError(t, err)
	env := StdEnv().Child()
	require.NoError(t, env.Define("url", StringValue{Val: server.URL}, Location{}))

	ev := NewEvaluator(context.Background(), nil)
	result, err := ev.EvalProgram(prog, env)
	require.NoError(t, err)

	obj := result.(*ObjectValue)
	status, _ := obj.Get("status")
	assert.Equal(t, NumberValue{Val: 201}, status)
	assert.Equal(t, "payload", receivedBody)
}

func TestHTTPRequestGenericMethod(t *testing.T) {
	var receivedMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	prog, err := ParseFile("test.fip", `http.request!(method, url, "")`)
	require.NoError(t, err)
	env := StdEnv().Child()
	require.NoError(t, env.Define("method", StringValue{Val: "PATCH"}, Location{}))
	require.NoError(t, env.Define("url", StringValue{Val: server.URL}, Location{}))

	ev := NewEvaluator(context.Background(), nil)
	_, err = ev.EvalProgram(prog, env)
	require.NoError(t, err)
	assert.Equal(t, "PATCH", receivedMethod)
}

func TestHTTPRequiresImpureCaller(t *testing.T) {
	_, err := evalSrc(t, `fetchPage: (url) { http.get!(url) }`)
	require.Error(t, err)
}
