// Package psbtsigner implements the end-to-end PSBT signing pipeline for a
// P2SH/P2WSH multisig transaction: parse, validate, describe, sign, emit.
// The pipeline never initiates network I/O; it operates purely on an
// in-memory PSBT handed to it (typically received over the optical
// channel) and returns the signed result as base64 for re-emission.
package psbtsigner

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/unchained-capital/hermit/internal/wallet"
	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

// fingerprintToUint32 matches the byte order the psbt library uses to pack
// a raw 4-byte BIP-32 fingerprint into Bip32Derivation.MasterKeyFingerprint.
func fingerprintToUint32(fp [4]byte) uint32 {
	return binary.LittleEndian.Uint32(fp[:])
}

// Quorum is the (m, n) multisig threshold shared by every input of a
// signature request.
type Quorum struct {
	M int
	N int
}

// Description is the rendered transaction summary presented to the
// operator at the approve step.
type Description struct {
	InputCount        int
	OutputCount       int
	TotalIn           int64
	TotalOut          int64
	Fee               int64
	Quorum            Quorum
	ChangeOutputIndex int // -1 if no change output
}

// Signer drives the receive->parse->validate->describe->approve->sign->emit
// pipeline against a single wallet root.
type Signer struct {
	root *wallet.Root
}

// New returns a Signer bound to root. root must be unlocked before Sign is
// called.
func New(root *wallet.Root) *Signer {
	return &Signer{root: root}
}

// Parse decodes a base64 BIP-174 PSBT. Any decoding or structural error is
// surfaced as ErrInvalidPSBT.
func Parse(raw string) (*psbt.Packet, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, hermiterr.Wrap(hermiterr.ErrInvalidPSBT, "invalid base64: %v", err)
	}

	p, err := psbt.NewFromRawBytes(bytes.NewReader(data), false)
	if err != nil {
		return nil, hermiterr.Wrap(hermiterr.ErrInvalidPSBT, "invalid PSBT: %v", err)
	}
	return p, nil
}

// Validate enforces spec's structural and policy invariants: every input
// must carry a witness or redeem script, every input must share the same
// (m, n) quorum, any change output claiming named_pubs must agree with that
// quorum, and at most one change output is permitted. coord is optional; if
// non-nil its configured signature requirement is also checked.
func (s *Signer) Validate(p *psbt.Packet, coord *CoordinatorCheck) (Quorum, error) {
	if p.UnsignedTx == nil || len(p.Inputs) != len(p.UnsignedTx.TxIn) {
		return Quorum{}, hermiterr.Wrap(hermiterr.ErrInvalidPSBT, "malformed PSBT structure")
	}
	if len(p.Inputs) == 0 {
		return Quorum{}, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "no inputs")
	}

	var shared Quorum
	for i, in := range p.Inputs {
		script := in.WitnessScript
		if script == nil {
			script = in.RedeemScript
		}
		if script == nil {
			return Quorum{}, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "input %d missing witness/redeem script", i)
		}

		m, n, _, err := quorum(script)
		if err != nil {
			return Quorum{}, err
		}

		if i == 0 {
			shared = Quorum{M: m, N: n}
			continue
		}
		if m != shared.M || n != shared.N {
			return Quorum{}, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "quorum mismatch at input %d", i)
		}
	}

	changeCount := 0
	for i, out := range p.Outputs {
		if len(out.Bip32Derivation) == 0 {
			continue
		}
		changeCount++
		script := out.WitnessScript
		if script == nil {
			script = out.RedeemScript
		}
		if script == nil {
			return Quorum{}, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "change output %d missing witness/redeem script", i)
		}
		m, n, _, err := quorum(script)
		if err != nil {
			return Quorum{}, err
		}
		if m != shared.M || n != shared.N {
			return Quorum{}, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "change output %d quorum mismatch", i)
		}
	}
	if changeCount > 1 {
		return Quorum{}, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "multiple change outputs")
	}

	if err := s.verifyNamedPubs(p); err != nil {
		return Quorum{}, err
	}

	if coord != nil {
		if err := coord.Verify(p); err != nil {
			return Quorum{}, err
		}
	}

	return shared, nil
}

// verifyNamedPubs checks, for every Bip32Derivation entry matching our own
// wallet fingerprint, that deriving the declared path actually reproduces
// the declared pubkey. Entries belonging to other cosigners cannot be
// independently verified here: doing so would require a registry of every
// cosigner's xpub, which is out of this wallet's scope (see DESIGN.md).
func (s *Signer) verifyNamedPubs(p *psbt.Packet) error {
	if !s.root.IsUnlocked() {
		return nil
	}
	ourFPUint := fingerprintToUint32(s.root.Fingerprint())

	check := func(derivs []*psbt.Bip32Derivation) error {
		for _, d := range derivs {
			if d == nil || d.MasterKeyFingerprint != ourFPUint {
				continue
			}
			path := wallet.Path(d.Bip32Path)
			pub, err := s.root.PublicKey(path.String())
			if err != nil {
				return hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "named_pub derivation failed: %v", err)
			}
			if !bytes.Equal(pub, d.PubKey) {
				return hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "named_pub does not reproduce declared pubkey")
			}
		}
		return nil
	}

	for _, in := range p.Inputs {
		if err := check(in.Bip32Derivation); err != nil {
			return err
		}
	}
	for _, out := range p.Outputs {
		if err := check(out.Bip32Derivation); err != nil {
			return err
		}
	}
	return nil
}

// prevOutputFor resolves the UTXO an input spends, from either its witness
// or non-witness (legacy P2SH) utxo field.
func prevOutputFor(p *psbt.Packet, i int, in *psbt.PInput) (*wire.TxOut, error) {
	if in.WitnessUtxo != nil {
		return in.WitnessUtxo, nil
	}
	if in.NonWitnessUtxo != nil {
		idx := p.UnsignedTx.TxIn[i].PreviousOutPoint.Index
		if int(idx) >= len(in.NonWitnessUtxo.TxOut) {
			return nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "non-witness UTXO missing output %d", idx)
		}
		return in.NonWitnessUtxo.TxOut[idx], nil
	}
	return nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "input %d missing witness/non-witness UTXO", i)
}

// Describe computes the transaction summary rendered to the operator.
func (s *Signer) Describe(p *psbt.Packet, q Quorum) (*Description, error) {
	var totalIn, totalOut int64
	for i, in := range p.Inputs {
		prevOut, err := prevOutputFor(p, i, &in)
		if err != nil {
			return nil, err
		}
		totalIn += prevOut.Value
	}
	for _, out := range p.UnsignedTx.TxOut {
		totalOut += out.Value
	}

	fee := totalIn - totalOut
	if fee < 0 {
		return nil, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "negative fee")
	}

	changeIdx := -1
	for i, out := range p.Outputs {
		if len(out.Bip32Derivation) > 0 {
			changeIdx = i
			break
		}
	}

	return &Description{
		InputCount:        len(p.Inputs),
		OutputCount:       len(p.Outputs),
		TotalIn:           totalIn,
		TotalOut:          totalOut,
		Fee:               fee,
		Quorum:            q,
		ChangeOutputIndex: changeIdx,
	}, nil
}

// Sign derives the private key for every (fingerprint, path) pair that
// matches this wallet's root fingerprint and adds a partial signature to
// each applicable input. It returns the number of inputs signed.
func (s *Signer) Sign(p *psbt.Packet) (int, error) {
	if !s.root.IsUnlocked() {
		return 0, hermiterr.ErrWalletLocked
	}
	ourFPUint := fingerprintToUint32(s.root.Fingerprint())

	prevOuts := make(map[wire.OutPoint]*wire.TxOut)
	for i, in := range p.Inputs {
		if prevOut, err := prevOutputFor(p, i, &in); err == nil {
			prevOuts[p.UnsignedTx.TxIn[i].PreviousOutPoint] = prevOut
		}
	}
	fetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	sigHashes := txscript.NewTxSigHashes(p.UnsignedTx, fetcher)

	signed := 0
	for i, in := range p.Inputs {
		script := in.WitnessScript
		legacy := false
		if script == nil {
			script = in.RedeemScript
			legacy = true
		}
		if script == nil {
			continue
		}

		var target *psbt.Bip32Derivation
		for _, d := range in.Bip32Derivation {
			if d != nil && d.MasterKeyFingerprint == ourFPUint {
				target = d
				break
			}
		}
		if target == nil {
			continue
		}

		path := wallet.Path(target.Bip32Path)
		privKeyBytes, err := s.root.PrivateKey(path.String())
		if err != nil {
			return signed, hermiterr.Wrap(err, "failed to derive signing key for input %d", i)
		}
		privKey, pubKeyCompressed := privKeyFromBytes(privKeyBytes)
		wallet.ZeroBytes(privKeyBytes)

		var sig []byte
		if legacy {
			sig, err = txscript.RawTxInSignature(p.UnsignedTx, i, script, txscript.SigHashAll, privKey)
		} else {
			prevOut, perr := prevOutputFor(p, i, &in)
			if perr != nil {
				return signed, perr
			}
			sig, err = txscript.RawTxInWitnessSignature(
				p.UnsignedTx,
				sigHashes,
				i,
				prevOut.Value,
				script,
				txscript.SigHashAll,
				privKey,
			)
		}
		if err != nil {
			return signed, hermiterr.Wrap(err, "failed to sign input %d", i)
		}

		p.Inputs[i].PartialSigs = append(p.Inputs[i].PartialSigs, &psbt.PartialSig{
			PubKey:    pubKeyCompressed,
			Signature: sig,
		})
		signed++
	}

	if signed == 0 {
		return 0, hermiterr.Wrap(hermiterr.ErrInvalidSignatureRequest, "no inputs matched this wallet's fingerprint")
	}
	return signed, nil
}

// privKeyFromBytes parses a raw 32-byte EC private key and returns the
// btcec key plus its compressed public key encoding.
func privKeyFromBytes(raw []byte) (*btcec.PrivateKey, []byte) {
	priv, pub := btcec.PrivKeyFromBytes(raw)
	return priv, pub.SerializeCompressed()
}

// Emit serializes the PSBT to base64 for re-emission over the optical
// channel.
func Emit(p *psbt.Packet) (string, error) {
	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		return "", hermiterr.Wrap(err, "failed to serialize PSBT")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Pipeline runs the full receive(already-decoded)->validate->describe->
// approve->sign->emit sequence in the fixed order spec's concurrency model
// requires. approve receives the rendered Description and returns whether
// the operator affirmatively proceeds; a false return aborts without
// altering PSBT or wallet state.
func (s *Signer) Pipeline(raw string, coord *CoordinatorCheck, approve func(*Description) bool) (string, error) {
	p, err := Parse(raw)
	if err != nil {
		return "", err
	}

	q, err := s.Validate(p, coord)
	if err != nil {
		return "", err
	}

	desc, err := s.Describe(p, q)
	if err != nil {
		return "", err
	}

	if !approve(desc) {
		return "", hermiterr.New("SIGN_ABORTED", "operator declined to sign")
	}

	if _, err := s.Sign(p); err != nil {
		return "", err
	}

	return Emit(p)
}
