/*
Package executor sends a fully resolved request and captures the response.

Execute takes a types.RequestData produced by the builder and returns a
types.RequestResult with status, headers, body, sizes and the elapsed time
in milliseconds. Network failures such as refused connections or timeouts
are reported in RequestResult.Error rather than as a Go error, so callers
can still record them in history.

Header pairs are sent in order and duplicate names become repeated header
values. A Host header sets the request host.

TLS support includes custom CA certificates, client certificates (mTLS)
and InsecureSkipVerify for development.

Example:

	result, err := executor.Execute(ctx, data, executor.Options{Timeout: 10 * time.Second})
	if err != nil {
		return err
	}
	fmt.Printf("Status: %d\n", result.Status)
*/
package executor
