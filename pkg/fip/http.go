package fip

import (
	"io"
	"net/http"
	"strings"
	"time"
)

// http.go wires a domain the spec's original_source has no analogue for:
// a small synchronous net/http client exposed as the `http` namespace
// object, grounded on the client construction idiom in
// pkg/dang/project.go's makeClient (plain net/http, an explicit Timeout,
// no retry/backoff machinery). Every operation here is impure and returns
// an Object shaped {status, body}; callers that want async-style usage can
// wrap a call in an `async` function, which settles a Promise around it.
var httpClient = &http.Client{Timeout: 30 * time.Second}

func init() {
	RegisterGlobal("http", buildHTTPNamespace())
}

func buildHTTPNamespace() *ObjectValue {
	ns := NewObject()
	ns = ns.With("get!", httpMethodBuiltin("get!", "GET", false))
	ns = ns.With("post!", httpMethodBuiltin("post!", "POST", true))
	ns = ns.With("put!", httpMethodBuiltin("put!", "PUT", true))
	ns = ns.With("delete!", httpMethodBuiltin("delete!", "DELETE", false))
	ns = ns.With("request!", &BuiltinValue{Def: &BuiltinDef{
		Name: "http.request!", Impure: true, Params: []string{"method", "url", "body"},
		Impl: func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			method, err := requireString(args, 0, "http.request!")
			if err != nil {
				return nil, err
			}
			url, err := requireString(args, 1, "http.request!")
			if err != nil {
				return nil, err
			}
			body, _ := args[2].(StringValue)
			return doRequest(ev, loc, method, url, body.Val)
		},
	}})
	return ns
}

func httpMethodBuiltin(name, method string, hasBody bool) *BuiltinValue {
	params := []string{"url"}
	if hasBody {
		params = append(params, "body")
	}
	return &BuiltinValue{Def: &BuiltinDef{
		Name: "http." + name, Impure: true, Params: params,
		Impl: func(ev *Evaluator, loc Location, args []Value) (Value, error) {
			url, err := requireString(args, 0, "http."+name)
			if err != nil {
				return nil, err
			}
			var body string
			if hasBody {
				bv, err := requireString(args, 1, "http."+name)
				if err != nil {
					return nil, err
				}
				body = bv
			}
			return doRequest(ev, loc, method, url, body)
		},
	}}
}

func requireString(args []Value, i int, who string) (string, error) {
	s, ok := args[i].(StringValue)
	if !ok {
		return "", newRuntimeError(Location{}, "%s: expected a String for argument %d, found %s", who, i+1, args[i].Kind())
	}
	return s.Val, nil
}

func doRequest(ev *Evaluator, loc Location, method, url, body string) (Value, error) {
	req, err := http.NewRequestWithContext(ev.Context(), method, url, strings.NewReader(body))
	if err != nil {
		return nil, newRuntimeError(loc, "http %s %s: %v", method, url, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, newRuntimeError(loc, "http %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newRuntimeError(loc, "http %s %s: reading response: %v", method, url, err)
	}

	result := NewObject()
	result = result.With("status", NumberValue{Val: int64(resp.StatusCode)})
	result = result.With("body", StringValue{Val: string(respBody)})
	return result, nil
}
