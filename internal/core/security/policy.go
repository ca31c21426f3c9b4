package security

import (
	"sort"
	"time"

	"github.com/nexusshell/nexusshell/internal/bytesize"
)

// Policy is the resolved security envelope a loaded plugin executes
// under: which capabilities are explicitly allowed or denied, the
// maximum tolerated risk level, and resource/network/filesystem caps.
type Policy struct {
	Name      string
	Allowed   map[string]bool
	Denied    map[string]bool
	MaxRisk   RiskLevel
	MemoryCap bytesize.ByteSize
	CPUTimeCap           time.Duration
	FileDescriptorCap    int
	NetworkConnectionCap int
	AllowedPaths         []string
	DeniedPaths          []string
	AllowedHosts         []string
	DeniedHosts          []string
	RequireSignature     bool
	AllowNativeCode      bool
}

// Restrictive is the default policy for unsigned plugins: denies
// process.spawn and network.listen, caps risk at Medium, and does not
// itself require a signature (it's the fallback assigned precisely
// when one is absent).
func Restrictive() Policy {
	return Policy{
		Name:                 "Restrictive",
		Denied:               map[string]bool{"process.spawn": true, "network.listen": true},
		MaxRisk:              RiskMedium,
		MemoryCap:            64 * 1024 * 1024,
		CPUTimeCap:           30 * time.Second,
		FileDescriptorCap:    16,
		NetworkConnectionCap: 4,
		RequireSignature:     false,
	}
}

// Trusted is for signature-verified plugins: denies only process.spawn,
// allows up to High risk, and requires a sidecar signature to grant
// that trust in the first place.
func Trusted() Policy {
	return Policy{
		Name:                 "Trusted",
		Denied:               map[string]bool{"process.spawn": true},
		MaxRisk:              RiskHigh,
		MemoryCap:            256 * 1024 * 1024,
		CPUTimeCap:           2 * time.Minute,
		FileDescriptorCap:    64,
		NetworkConnectionCap: 32,
		RequireSignature:     true,
	}
}

// Development denies nothing, allows up to Critical risk, and does not
// require a signature. Intended for local plugin development only.
func Development() Policy {
	return Policy{
		Name:                 "Development",
		MaxRisk:              RiskCritical,
		MemoryCap:            1024 * 1024 * 1024,
		CPUTimeCap:           10 * time.Minute,
		FileDescriptorCap:    256,
		NetworkConnectionCap: 256,
		AllowNativeCode:      true,
		RequireSignature:     false,
	}
}

// Permits reports whether the policy allows capability name outright,
// ignoring risk level (callers should also check MaxRisk separately via
// ValidatePlugin).
func (p Policy) Permits(name string) bool {
	if p.Denied[name] {
		return false
	}
	if len(p.Allowed) > 0 {
		return p.Allowed[name]
	}
	return true
}

// PolicyDiff describes how two policies differ, supplementing the core
// contract with the comparison the source's policy diffing supported.
type PolicyDiff struct {
	OnlyInA      []string
	OnlyInB      []string
	RiskChanged  bool
	RiskA, RiskB RiskLevel
}

// Diff compares two policies' denied sets and max risk level; their
// Allowed sets are not compared.
func Diff(a, b Policy) PolicyDiff {
	d := PolicyDiff{RiskA: a.MaxRisk, RiskB: b.MaxRisk, RiskChanged: a.MaxRisk != b.MaxRisk}

	aDenied := setKeys(a.Denied)
	bDenied := setKeys(b.Denied)
	aSet := toSet(aDenied)
	bSet := toSet(bDenied)

	for _, name := range aDenied {
		if !bSet[name] {
			d.OnlyInA = append(d.OnlyInA, name)
		}
	}
	for _, name := range bDenied {
		if !aSet[name] {
			d.OnlyInB = append(d.OnlyInB, name)
		}
	}

	sort.Strings(d.OnlyInA)
	sort.Strings(d.OnlyInB)
	return d
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func toSet(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}
