package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

func queryEscape(s string) string {
	return url.QueryEscape(s)
}

func getBody(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup: unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func getJSON(ctx context.Context, client *http.Client, target string, out any) error {
	body, err := getBody(ctx, client, target)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
