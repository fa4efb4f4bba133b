package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
)

// Tool name constants for network lookups registered with Genkit.
const (
	// GeoLocationName is the Genkit tool name for IP geolocation.
	GeoLocationName = "geo_location"
	// PublicIPName is the Genkit tool name for public IP discovery.
	PublicIPName = "public_ip"
)

const (
	geoTimeout      = 10 * time.Second
	publicIPTimeout = 8 * time.Second

	maxLookupBody = 1 << 20 // 1 MiB, lookup payloads are tiny
)

// GeoLocationInput defines input for the geo_location tool.
type GeoLocationInput struct {
	Provider string `json:"provider,omitempty" jsonschema_description:"Provider to use: 'ip-api' or 'ipinfo'. Defaults to 'ip-api'."`
	IP       string `json:"ip,omitempty" jsonschema_description:"Target IPv4/IPv6 to locate. If omitted, the request client IP or the server IP is used."`
}

// PublicIPInput defines input for the public_ip tool.
type PublicIPInput struct {
	Provider string `json:"provider,omitempty" jsonschema_description:"Provider to use: 'ipify', 'ifconfig', or 'ipinfo'. Defaults to 'ipify'."`
}

// Network holds the HTTP client and provider endpoints for the network
// lookup tools. Endpoints are fields so tests can point them at a local
// httptest server.
type Network struct {
	geoClient      *http.Client
	publicIPClient *http.Client
	logger         *slog.Logger

	ipAPIBase   string
	ipinfoBase  string
	ipifyURL    string
	ifconfigURL string
}

// NewNetwork creates the network tool handlers.
func NewNetwork(logger *slog.Logger) *Network {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Network{
		geoClient:      &http.Client{Timeout: geoTimeout},
		publicIPClient: &http.Client{Timeout: publicIPTimeout},
		logger:         logger,
		ipAPIBase:      "http://ip-api.com/json",
		ipinfoBase:     "https://ipinfo.io",
		ipifyURL:       "https://api.ipify.org?format=json",
		ifconfigURL:    "https://ifconfig.me/ip",
	}
}

// GeoLocation resolves an approximate geographic location by IP. The
// target IP precedence is: explicit parameter, then the request client
// IP carried in the context, then the provider's view of the caller.
// The two providers back each other up; only when both fail does the
// tool return a structured error payload instead of a Go error.
func (n *Network) GeoLocation(ctx *ai.ToolContext, input GeoLocationInput) (map[string]any, error) {
	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	if provider == "" {
		provider = "ip-api"
	}

	targetIP := strings.TrimSpace(input.IP)
	if targetIP == "" {
		targetIP = ClientIPFromContext(ctx.Context)
	}

	n.logger.Debug("GeoLocation called", "provider", provider, "has_target_ip", targetIP != "")

	primary, secondary := n.lookupIPAPI, n.lookupIPInfo
	if provider == "ipinfo" {
		primary, secondary = secondary, primary
	}

	result, err := primary(ctx.Context, targetIP)
	if err == nil {
		return result, nil
	}
	n.logger.Warn("geolocation primary provider failed", "provider", provider, "error", err)

	result, err = secondary(ctx.Context, targetIP)
	if err == nil {
		return result, nil
	}
	n.logger.Warn("geolocation fallback provider failed", "error", err)

	payload := map[string]any{
		"error":    "geolocation_unavailable",
		"detail":   err.Error(),
		"provider": provider,
	}
	if targetIP != "" {
		payload["used_input_ip"] = targetIP
	}
	return payload, nil
}

func (n *Network) lookupIPAPI(ctx context.Context, targetIP string) (map[string]any, error) {
	url := n.ipAPIBase + "/"
	if targetIP != "" {
		url = n.ipAPIBase + "/" + targetIP
	}
	url += "?fields=status,message,country,countryCode,region,regionName,city,lat,lon,timezone,query,isp,org"

	var payload map[string]any
	if err := n.getJSON(ctx, n.geoClient, url, &payload); err != nil {
		return nil, err
	}
	if payload["status"] != "success" {
		msg, _ := payload["message"].(string)
		if msg == "" {
			msg = "ip-api lookup failed"
		}
		return nil, fmt.Errorf("ip-api: %s", msg)
	}

	region := payload["regionName"]
	if region == nil {
		region = payload["region"]
	}
	result := map[string]any{
		"ip":           payload["query"],
		"city":         payload["city"],
		"region":       region,
		"country":      payload["country"],
		"country_code": payload["countryCode"],
		"latitude":     payload["lat"],
		"longitude":    payload["lon"],
		"timezone":     payload["timezone"],
		"isp":          payload["isp"],
		"org":          payload["org"],
		"provider":     "ip-api",
	}
	if targetIP != "" {
		result["used_input_ip"] = targetIP
	}
	return result, nil
}

func (n *Network) lookupIPInfo(ctx context.Context, targetIP string) (map[string]any, error) {
	url := n.ipinfoBase + "/json"
	if targetIP != "" {
		url = n.ipinfoBase + "/" + targetIP + "/json"
	}

	var payload map[string]any
	if err := n.getJSON(ctx, n.geoClient, url, &payload); err != nil {
		return nil, err
	}

	// ipinfo encodes coordinates as "lat,lon".
	var lat, lon any
	if loc, _ := payload["loc"].(string); loc != "" {
		if parts := strings.SplitN(loc, ",", 2); len(parts) == 2 {
			latF, errLat := strconv.ParseFloat(parts[0], 64)
			lonF, errLon := strconv.ParseFloat(parts[1], 64)
			if errLat == nil && errLon == nil {
				lat, lon = latF, lonF
			}
		}
	}

	result := map[string]any{
		"ip":           payload["ip"],
		"city":         payload["city"],
		"region":       payload["region"],
		"country":      payload["country"],
		"country_code": payload["country"],
		"latitude":     lat,
		"longitude":    lon,
		"timezone":     payload["timezone"],
		"org":          payload["org"],
		"provider":     "ipinfo",
	}
	if targetIP != "" {
		result["used_input_ip"] = targetIP
	}
	return result, nil
}

// PublicIP discovers the server's public IP address. The requested
// provider is tried first; on failure the remaining providers are tried
// in a fixed order. Exhaustion yields a structured error payload.
func (n *Network) PublicIP(ctx *ai.ToolContext, input PublicIPInput) (map[string]any, error) {
	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	if provider == "" {
		provider = "ipify"
	}

	n.logger.Debug("PublicIP called", "provider", provider)

	lookups := map[string]func(context.Context) (map[string]any, error){
		"ipify":    n.publicIPViaIpify,
		"ifconfig": n.publicIPViaIfconfig,
		"ipinfo":   n.publicIPViaIpinfo,
	}

	first, ok := lookups[provider]
	if !ok {
		first = lookups["ipify"]
	}
	if result, err := first(ctx.Context); err == nil {
		return result, nil
	}

	for _, name := range []string{"ifconfig", "ipinfo", "ipify"} {
		result, err := lookups[name](ctx.Context)
		if err == nil {
			return result, nil
		}
		n.logger.Warn("public IP provider failed", "provider", name, "error", err)
	}

	return map[string]any{
		"error":    "public_ip_unavailable",
		"provider": provider,
	}, nil
}

func (n *Network) publicIPViaIpify(ctx context.Context) (map[string]any, error) {
	var payload struct {
		IP string `json:"ip"`
	}
	if err := n.getJSON(ctx, n.publicIPClient, n.ipifyURL, &payload); err != nil {
		return nil, err
	}
	if payload.IP == "" {
		return nil, fmt.Errorf("ipify returned no IP")
	}
	return map[string]any{"ip": payload.IP, "provider": "ipify"}, nil
}

func (n *Network) publicIPViaIfconfig(ctx context.Context) (map[string]any, error) {
	body, err := n.getBody(ctx, n.publicIPClient, n.ifconfigURL)
	if err != nil {
		return nil, err
	}
	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return nil, fmt.Errorf("ifconfig.me returned no IP")
	}
	return map[string]any{"ip": ip, "provider": "ifconfig.me"}, nil
}

func (n *Network) publicIPViaIpinfo(ctx context.Context) (map[string]any, error) {
	var payload struct {
		IP string `json:"ip"`
	}
	if err := n.getJSON(ctx, n.publicIPClient, n.ipinfoBase+"/json", &payload); err != nil {
		return nil, err
	}
	if payload.IP == "" {
		return nil, fmt.Errorf("ipinfo returned no IP")
	}
	return map[string]any{"ip": payload.IP, "provider": "ipinfo"}, nil
}

func (n *Network) getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	body, err := n.getBody(ctx, client, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

func (n *Network) getBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("requesting %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupBody))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return body, nil
}
