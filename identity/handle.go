package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// SRVPayout is the SRV service label for payout endpoint discovery:
// _fundsplit._tcp.{domain}.
const SRVPayout = "fundsplit"

const (
	// defaultUpstream is the default recursive resolver for DNSSEC queries.
	defaultUpstream = "8.8.8.8:53"

	// dnssecTimeout is the timeout for DNSSEC queries.
	dnssecTimeout = 10 * time.Second

	// edns0BufSize is the EDNS0 UDP buffer size.
	edns0BufSize = 4096
)

// Handle is a human-readable payout identity of the form alias@domain.
type Handle struct {
	Alias  string
	Domain string
}

// ParseHandle splits a payout handle into alias and domain.
func ParseHandle(raw string) (Handle, error) {
	parts := strings.Split(raw, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidHandle, raw)
	}
	return Handle{Alias: parts[0], Domain: parts[1]}, nil
}

func (h Handle) String() string { return h.Alias + "@" + h.Domain }

// DNSResolver defines the interface for DNS lookups, so tests can mock
// resolution.
type DNSResolver interface {
	// LookupSRV looks up SRV records for the given service, proto, and name.
	LookupSRV(service, proto, name string) (string, []*net.SRV, error)
}

// defaultDNSResolver wraps the standard net package DNS functions.
type defaultDNSResolver struct{}

func (d *defaultDNSResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return net.LookupSRV(service, proto, name)
}

// DefaultDNSResolver is the production DNS resolver using the net package.
var DefaultDNSResolver DNSResolver = &defaultDNSResolver{}

// ResolvePayoutEndpoints resolves the payout-host SRV records for a handle's
// domain. Returns endpoint addresses (host:port) sorted by priority then weight.
func ResolvePayoutEndpoints(domain string) ([]string, error) {
	return ResolvePayoutEndpointsWithResolver(domain, DefaultDNSResolver)
}

// ResolvePayoutEndpointsWithResolver resolves SRV records using the provided
// DNS resolver.
func ResolvePayoutEndpointsWithResolver(domain string, resolver DNSResolver) ([]string, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}

	_, addrs, err := resolver.LookupSRV(SRVPayout, "tcp", domain)
	if err != nil {
		return nil, fmt.Errorf("%w: SRV lookup for _%s._tcp.%s: %w", ErrDNSLookupFailed, SRVPayout, domain, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no SRV records for _%s._tcp.%s", ErrNoEndpoints, SRVPayout, domain)
	}

	// Sort by priority (ascending), then by weight (descending).
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Priority != addrs[j].Priority {
			return addrs[i].Priority < addrs[j].Priority
		}
		return addrs[i].Weight > addrs[j].Weight
	})

	endpoints := make([]string, len(addrs))
	for i, srv := range addrs {
		host := strings.TrimSuffix(srv.Target, ".")
		endpoints[i] = fmt.Sprintf("%s:%d", host, srv.Port)
	}
	return endpoints, nil
}

// DNSSECResolver validates payout domains through a DNSSEC-aware upstream.
// It relies on the upstream recursive resolver to perform DNSSEC validation
// and checks the AD (Authenticated Data) flag in responses.
type DNSSECResolver struct {
	// Upstream is the recursive resolver address (e.g., "8.8.8.8:53").
	Upstream string
}

// NewDNSSECResolver creates a new DNSSECResolver.
// If upstream is empty, it defaults to "8.8.8.8:53".
func NewDNSSECResolver(upstream string) *DNSSECResolver {
	if upstream == "" {
		upstream = defaultUpstream
	}
	return &DNSSECResolver{Upstream: upstream}
}

// VerifyDomain queries the domain's payout SRV record with the DNSSEC OK flag
// set and requires the AD flag in the response. Domains without authenticated
// records are rejected with ErrNotAuthenticated.
func (r *DNSSECResolver) VerifyDomain(domain string) error {
	fqdn := dns.Fqdn(fmt.Sprintf("_%s._tcp.%s", SRVPayout, domain))

	msg := new(dns.Msg)
	msg.SetQuestion(fqdn, dns.TypeSRV)
	msg.RecursionDesired = true
	msg.SetEdns0(edns0BufSize, true) // DO (DNSSEC OK) flag

	client := &dns.Client{Timeout: dnssecTimeout}
	resp, _, err := client.Exchange(msg, r.Upstream)
	if err != nil {
		return fmt.Errorf("%w: query %s: %w", ErrDNSLookupFailed, fqdn, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return fmt.Errorf("%w: query %s: rcode %s", ErrDNSLookupFailed, fqdn, dns.RcodeToString[resp.Rcode])
	}
	if !resp.AuthenticatedData {
		return fmt.Errorf("%w: %s", ErrNotAuthenticated, domain)
	}
	return nil
}

// payoutAddressPath is the well-known path payout hosts serve address
// resolution on; the handle is appended as the final path element.
const payoutAddressPath = "/v1/payout/address/"

// AddressResolver resolves payout handles to settlement addresses: the
// handle domain's payout hosts are discovered via SRV and queried over HTTPS
// until one returns a valid address.
type AddressResolver struct {
	dns    DNSResolver
	dnssec *DNSSECResolver
	client *http.Client
	scheme string
}

// NewAddressResolver creates a handle resolver. A nil dnsResolver falls back
// to DefaultDNSResolver. A non-nil dnssec makes resolution require DNSSEC
// authentication of the handle domain.
func NewAddressResolver(dnsResolver DNSResolver, dnssec *DNSSECResolver) *AddressResolver {
	if dnsResolver == nil {
		dnsResolver = DefaultDNSResolver
	}
	return &AddressResolver{
		dns:    dnsResolver,
		dnssec: dnssec,
		client: &http.Client{Timeout: 30 * time.Second},
		scheme: "https",
	}
}

// payoutAddressResponse is the JSON body returned by a payout host.
type payoutAddressResponse struct {
	Address string `json:"address"`
}

// ResolveAddress resolves an alias@domain handle to a settlement address.
// Hosts are tried in SRV priority order; the first syntactically valid
// address wins. All failures are wrapped in ErrHandleResolutionFailed except
// parse and DNS errors, which keep their own sentinels.
func (r *AddressResolver) ResolveAddress(ctx context.Context, raw string) (string, error) {
	h, err := ParseHandle(raw)
	if err != nil {
		return "", err
	}
	if r.dnssec != nil {
		if err := r.dnssec.VerifyDomain(h.Domain); err != nil {
			return "", err
		}
	}
	endpoints, err := ResolvePayoutEndpointsWithResolver(h.Domain, r.dns)
	if err != nil {
		return "", err
	}

	var lastErr error
	for _, endpoint := range endpoints {
		address, err := r.queryAddress(ctx, endpoint, h)
		if err != nil {
			lastErr = err
			continue
		}
		return address, nil
	}
	return "", fmt.Errorf("%w: %s: %w", ErrHandleResolutionFailed, raw, lastErr)
}

// queryAddress asks one payout host for the handle's address.
func (r *AddressResolver) queryAddress(ctx context.Context, endpoint string, h Handle) (string, error) {
	u := fmt.Sprintf("%s://%s%s%s", r.scheme, endpoint, payoutAddressPath, url.PathEscape(h.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("query %s: HTTP %d", endpoint, resp.StatusCode)
	}

	var body payoutAddressResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	if err := ValidateAddress(body.Address); err != nil {
		return "", fmt.Errorf("address from %s: %w", endpoint, err)
	}
	return body.Address, nil
}
