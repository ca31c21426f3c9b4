package verify

import (
	"time"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// VerificationResult is the outcome of running a plugin artifact through
// the verification pipeline.
type VerificationResult struct {
	Valid  bool
	Signed bool
	KeyID  string
	Error  *shellerr.ShellError
}

// Verifier runs the five-step verification pipeline a plugin artifact
// must pass before the host will load it: resolve the expected hash
// from TUF targets metadata, confirm the artifact's claimed hash
// matches, verify a sidecar signature if one is present (resolving and
// confirming the signing key, checking the Ed25519 signature, and
// rejecting an expired sidecar), and finally enforce whether the
// policy requires that signature to have existed at all.
type Verifier struct {
	Keys    *KeyStore
	Targets *TargetsStore
}

// NewVerifier constructs a Verifier over the given key and targets stores.
func NewVerifier(keys *KeyStore, targets *TargetsStore) *Verifier {
	return &Verifier{Keys: keys, Targets: targets}
}

// Verify runs the pipeline for pluginID, stopping at the first failing
// step. The hash declared in the TUF targets entry is always checked
// against sidecar.Hash, signed or not. A sidecar signature is only
// optional: when absent, Verify succeeds with Signed:false unless
// requireSignature is set, in which case it fails closed with
// KindSignatureRequired.
func (v *Verifier) Verify(pluginID string, sidecar Sidecar, requireSignature bool, now time.Time) VerificationResult {
	target, err := v.Targets.Lookup(pluginID)
	if err != nil {
		return VerificationResult{Error: err}
	}

	if sidecar.Hash != target.Hash {
		return VerificationResult{Error: shellerr.New(shellerr.KindHashMismatch,
			"artifact hash %q does not match targets-declared hash %q for plugin %q", sidecar.Hash, target.Hash, pluginID).
			WithContext("plugin_id", pluginID)}
	}

	signed := sidecar.Signature != ""
	if !signed {
		if requireSignature {
			return VerificationResult{Error: shellerr.New(shellerr.KindSignatureRequired,
				"plugin %q has no signature sidecar but the policy requires one", pluginID).
				WithContext("plugin_id", pluginID)}
		}
		return VerificationResult{Valid: true, Signed: false}
	}

	pub, err := v.Keys.Lookup(sidecar.KeyID)
	if err != nil {
		return VerificationResult{KeyID: sidecar.KeyID, Error: err}
	}

	ok, verr := sidecar.VerifySignature(pub)
	if verr != nil {
		return VerificationResult{KeyID: sidecar.KeyID, Error: shellerr.FromError(verr)}
	}
	if !ok {
		return VerificationResult{KeyID: sidecar.KeyID, Error: shellerr.New(shellerr.KindSignatureInvalid,
			"signature on plugin %q does not verify against key %q", pluginID, sidecar.KeyID).
			WithContext("plugin_id", pluginID).WithContext("key_id", sidecar.KeyID)}
	}

	if sidecar.IsExpired(now) {
		return VerificationResult{KeyID: sidecar.KeyID, Error: shellerr.New(shellerr.KindExpired,
			"signature on plugin %q expired at %s", pluginID, sidecar.ExpiresAt.Format(time.RFC3339)).
			WithContext("plugin_id", pluginID)}
	}

	return VerificationResult{Valid: true, Signed: true, KeyID: sidecar.KeyID}
}

// DryRunIssue is one failing check surfaced by VerifyDryRun.
type DryRunIssue struct {
	Step  string
	Error *shellerr.ShellError
}

// VerifyDryRun runs every pipeline check independently of the others and
// collects every failure, rather than stopping at the first one. It
// mutates no state and is intended for diagnostics: "why would this
// plugin fail verification" rather than "does it pass." Signature-only
// checks (key lookup, signature, expiry) are skipped for an unsigned
// sidecar, mirroring Verify; a missing-but-required signature is
// reported as its own issue instead.
func (v *Verifier) VerifyDryRun(pluginID string, sidecar Sidecar, requireSignature bool, now time.Time) []DryRunIssue {
	var issues []DryRunIssue

	target, err := v.Targets.Lookup(pluginID)
	if err != nil {
		issues = append(issues, DryRunIssue{Step: "targets_lookup", Error: err})
	} else if sidecar.Hash != target.Hash {
		issues = append(issues, DryRunIssue{Step: "hash_match", Error: shellerr.New(shellerr.KindHashMismatch,
			"artifact hash %q does not match targets-declared hash %q", sidecar.Hash, target.Hash)})
	}

	signed := sidecar.Signature != ""
	if !signed {
		if requireSignature {
			issues = append(issues, DryRunIssue{Step: "signature_required", Error: shellerr.New(shellerr.KindSignatureRequired,
				"plugin %q has no signature sidecar but the policy requires one", pluginID)})
		}
		return issues
	}

	pub, err := v.Keys.Lookup(sidecar.KeyID)
	if err != nil {
		issues = append(issues, DryRunIssue{Step: "key_lookup", Error: err})
	} else {
		ok, verr := sidecar.VerifySignature(pub)
		if verr != nil {
			issues = append(issues, DryRunIssue{Step: "signature_verify", Error: shellerr.FromError(verr)})
		} else if !ok {
			issues = append(issues, DryRunIssue{Step: "signature_verify", Error: shellerr.New(shellerr.KindSignatureInvalid,
				"signature does not verify against key %q", sidecar.KeyID)})
		}
	}

	if sidecar.IsExpired(now) {
		issues = append(issues, DryRunIssue{Step: "expiry", Error: shellerr.New(shellerr.KindExpired, "sidecar expired")})
	}

	return issues
}
