// Package usagerelay is a Go client for a running usagerelay server.
//
// It reads the cached snapshot and the health report without touching the
// upstream usage API, so it is safe to call as often as a display needs.
//
//	client, _ := usagerelay.New("http://172.16.42.1:8080")
//	h, _ := client.Health(ctx)
//	u, _ := client.Usage(ctx)
//	if u.State == usagerelay.StateReady {
//	    fmt.Println(string(u.Payload))
//	}
package usagerelay
