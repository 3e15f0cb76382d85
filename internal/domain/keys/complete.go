package keys

import (
	"errors"
	"fmt"

	"github.com/ftenafmar/PCLCrypto/internal/pkg/bigutil"
)

// Complete deterministically fills every derivable field of the supplied
// parameter set and cross-checks the supplied ones. The input is never
// mutated; the enriched copy is returned. Completion is idempotent:
// Complete(Complete(p)) == Complete(p).
//
// Derivations, in priority order:
//  1. d, p, q present, CRT fields missing: dP = d mod (p-1),
//     dQ = d mod (q-1), qInv = q^-1 mod p.
//  2. CRT fields present, d missing, e present: d is reconstructed as the
//     inverse of e modulo lcm(p-1, q-1) and validated against the supplied
//     dP and dQ. Without e the set stays CRT-only.
//  3. n, e, d only: factors cannot be derived without factoring the modulus,
//     so the set is kept as a non-CRT private key.
//  4. n, e only: public-only set.
//
// Failures split into ErrIncompleteKeyMaterial (mathematically insufficient
// input) and ErrInconsistentKeyMaterial (supplied fields contradict each
// other).
func Complete(p Parameters) (Parameters, error) {
	out := p.Clone()

	if !out.HasPublicKey() && len(out.PrimeP) > 0 && len(out.PrimeQ) > 0 {
		// A factored private key determines its own modulus.
		out.Modulus = bigutil.Mul(out.PrimeP, out.PrimeQ)
	}
	if len(out.Modulus) == 0 {
		return Parameters{}, fmt.Errorf("%w: no modulus and no factors", ErrIncompleteKeyMaterial)
	}
	if len(out.PublicExponent) == 0 {
		return Parameters{}, fmt.Errorf("%w: missing public exponent", ErrIncompleteKeyMaterial)
	}

	if err := crossCheck(&out); err != nil {
		return Parameters{}, err
	}

	haveFactors := len(out.PrimeP) > 0 && len(out.PrimeQ) > 0

	switch {
	case len(out.PrivateExponent) > 0 && haveFactors:
		if err := deriveCrtFields(&out); err != nil {
			return Parameters{}, err
		}

	case len(out.PrivateExponent) == 0 && out.HasCrtData():
		if err := reconstructPrivateExponent(&out); err != nil {
			return Parameters{}, err
		}

	case len(out.PrivateExponent) == 0 && haveFactors:
		// Factors without d or a full CRT set: nothing can anchor the
		// private exponent.
		return Parameters{}, fmt.Errorf("%w: factors present but neither d nor CRT exponents", ErrIncompleteKeyMaterial)
	}

	// A non-CRT private key (case 3) and a public-only set (case 4) pass
	// through unchanged; whether a platform accepts the former is reported
	// by the HasFullPrivateKeyData capability flag at handoff.
	return out, nil
}

// deriveCrtFields fills dP, dQ and qInv from d, p and q, keeping supplied
// values when already present.
func deriveCrtFields(p *Parameters) error {
	pMinus1 := bigutil.DecrementedBy1(p.PrimeP)
	qMinus1 := bigutil.DecrementedBy1(p.PrimeQ)

	if len(p.ExponentDP) == 0 {
		p.ExponentDP = bigutil.Mod(p.PrivateExponent, pMinus1)
	}
	if len(p.ExponentDQ) == 0 {
		p.ExponentDQ = bigutil.Mod(p.PrivateExponent, qMinus1)
	}
	if len(p.CoefficientQInv) == 0 {
		qInv, err := bigutil.ModInverse(p.PrimeQ, p.PrimeP)
		if err != nil {
			if errors.Is(err, bigutil.ErrNotInvertible) {
				return fmt.Errorf("%w: q has no inverse modulo p", ErrInconsistentKeyMaterial)
			}
			return err
		}
		p.CoefficientQInv = qInv
	}
	return crossCheckCrt(p)
}

// reconstructPrivateExponent rebuilds d from a CRT-only private key. The
// public exponent pins d down: any d with e*d ≡ 1 (mod lcm(p-1, q-1)) agrees
// with dP modulo p-1 and dQ modulo q-1, so we take the smallest such value
// and validate it against the supplied CRT exponents.
func reconstructPrivateExponent(p *Parameters) error {
	pMinus1 := bigutil.DecrementedBy1(p.PrimeP)
	qMinus1 := bigutil.DecrementedBy1(p.PrimeQ)
	lambda := bigutil.Lcm(pMinus1, qMinus1)

	d, err := bigutil.ModInverse(p.PublicExponent, lambda)
	if err != nil {
		return fmt.Errorf("%w: public exponent not invertible modulo lcm(p-1, q-1)", ErrIncompleteKeyMaterial)
	}

	if bigutil.Compare(bigutil.Mod(d, pMinus1), p.ExponentDP) != 0 ||
		bigutil.Compare(bigutil.Mod(d, qMinus1), p.ExponentDQ) != 0 {
		return fmt.Errorf("%w: CRT exponents do not match the public exponent", ErrIncompleteKeyMaterial)
	}

	p.PrivateExponent = d
	return crossCheckCrt(p)
}

// crossCheck validates the relationships between whatever fields are
// supplied, before any derivation runs.
func crossCheck(p *Parameters) error {
	if len(p.PrimeP) > 0 && len(p.PrimeQ) > 0 {
		if bigutil.Compare(bigutil.Mul(p.PrimeP, p.PrimeQ), p.Modulus) != 0 {
			return fmt.Errorf("%w: modulus is not the product of the primes", ErrInconsistentKeyMaterial)
		}
	}
	return nil
}

// crossCheckCrt validates the CRT fields against e, d, p and q once all of
// them are populated.
func crossCheckCrt(p *Parameters) error {
	pMinus1 := bigutil.DecrementedBy1(p.PrimeP)
	qMinus1 := bigutil.DecrementedBy1(p.PrimeQ)

	lambda := bigutil.Lcm(pMinus1, qMinus1)
	ed := bigutil.Mod(bigutil.Mul(p.PublicExponent, p.PrivateExponent), lambda)
	if bigutil.Compare(ed, []byte{1}) != 0 {
		return fmt.Errorf("%w: e*d != 1 mod lcm(p-1, q-1)", ErrInconsistentKeyMaterial)
	}

	if bigutil.Compare(p.ExponentDP, bigutil.Mod(p.PrivateExponent, pMinus1)) != 0 {
		return fmt.Errorf("%w: dP != d mod (p-1)", ErrInconsistentKeyMaterial)
	}
	if bigutil.Compare(p.ExponentDQ, bigutil.Mod(p.PrivateExponent, qMinus1)) != 0 {
		return fmt.Errorf("%w: dQ != d mod (q-1)", ErrInconsistentKeyMaterial)
	}

	product := bigutil.Mod(bigutil.Mul(p.CoefficientQInv, p.PrimeQ), p.PrimeP)
	if bigutil.Compare(product, []byte{1}) != 0 {
		return fmt.Errorf("%w: qInv*q != 1 mod p", ErrInconsistentKeyMaterial)
	}
	return nil
}
