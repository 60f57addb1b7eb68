package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManvendraPSdev/NTA-FIX-Backend/anchor"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/interfaces"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/papervault"
	"github.com/ManvendraPSdev/NTA-FIX-Backend/verifier"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Handler processes HTTP requests for the paper vault service. It fronts the
// lifecycle service, the anchor service, and the verifier; all binary values
// cross the wire base64-encoded (JSON []byte) except digests, which are hex.
type Handler struct {
	vault    *papervault.Service
	anchors  *anchor.Service
	verifier *verifier.Verifier
	log      *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
func NewHandler(vault *papervault.Service, anchors *anchor.Service, v *verifier.Verifier, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		vault:    vault,
		anchors:  anchors,
		verifier: v,
		log:      log,
	}
}

// SealRequest is the body of POST /api/papers/{paper_id}/seal.
type SealRequest struct {
	Content     []byte   `json:"content"`
	Threshold   int      `json:"threshold"`
	TotalShares int      `json:"total_shares"`
	Custodians  []string `json:"custodians"`
}

// SealResponse returns the sealed-paper record and the shares to hand to the
// custodians. The shares appear in this response only; the server does not
// serve them again.
type SealResponse struct {
	Sealed papervault.SealedPaper `json:"sealed"`
	Shares []interfaces.Share     `json:"shares"`
}

// HandleSeal encrypts a paper, splits its key, and distributes the shares.
//
// URL format: POST /api/papers/{paper_id}/seal
func (h *Handler) HandleSeal(w http.ResponseWriter, r *http.Request) {
	paperID, err := interfaces.NewPaperID(chi.URLParam(r, "paper_id"))
	if err != nil {
		http.Error(w, "Invalid paper id", http.StatusBadRequest)
		return
	}

	var req SealRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}

	custodians := make([]interfaces.CustodianID, len(req.Custodians))
	for i, c := range req.Custodians {
		custodians[i] = interfaces.CustodianID(c)
	}

	policy := interfaces.ThresholdPolicy{Threshold: req.Threshold, TotalShares: req.TotalShares}
	sealed, err := h.vault.Seal(r.Context(), paperID, req.Content, policy, custodians)
	if err != nil {
		h.writeError(w, "Failed to seal paper", err)
		return
	}

	shares, err := h.vault.DistributedShares(r.Context(), paperID)
	if err != nil {
		h.writeError(w, "Failed to load distributed shares", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, SealResponse{Sealed: sealed, Shares: shares})
}

// SubmitShareRequest is the body of POST /api/papers/{paper_id}/shares.
type SubmitShareRequest struct {
	Index int    `json:"index"`
	Value []byte `json:"value"`
}

// HandleSubmitShare records one custodian share and returns quorum progress.
//
// URL format: POST /api/papers/{paper_id}/shares
func (h *Handler) HandleSubmitShare(w http.ResponseWriter, r *http.Request) {
	paperID, err := interfaces.NewPaperID(chi.URLParam(r, "paper_id"))
	if err != nil {
		http.Error(w, "Invalid paper id", http.StatusBadRequest)
		return
	}

	var req SubmitShareRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}

	state, err := h.vault.SubmitShare(r.Context(), paperID, req.Index, req.Value)
	if err != nil {
		h.writeError(w, "Failed to submit share", err)
		return
	}

	h.writeJSON(w, http.StatusOK, state)
}

// HandleQuorum reports share collection progress for a paper.
//
// URL format: GET /api/papers/{paper_id}/quorum
func (h *Handler) HandleQuorum(w http.ResponseWriter, r *http.Request) {
	paperID, err := interfaces.NewPaperID(chi.URLParam(r, "paper_id"))
	if err != nil {
		http.Error(w, "Invalid paper id", http.StatusBadRequest)
		return
	}

	state, err := h.vault.QuorumState(r.Context(), paperID)
	if err != nil {
		h.writeError(w, "Failed to read quorum state", err)
		return
	}

	h.writeJSON(w, http.StatusOK, state)
}

// RedeemResponse carries the decrypted paper content.
type RedeemResponse struct {
	PaperID interfaces.PaperID `json:"paper_id"`
	Content []byte             `json:"content"`
}

// HandleRedeem reconstructs the paper key from submitted shares and returns
// the decrypted content. Requires quorum.
//
// URL format: POST /api/papers/{paper_id}/redeem
func (h *Handler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	paperID, err := interfaces.NewPaperID(chi.URLParam(r, "paper_id"))
	if err != nil {
		http.Error(w, "Invalid paper id", http.StatusBadRequest)
		return
	}

	sealed, err := h.vault.Sealed(r.Context(), paperID)
	if err != nil {
		h.writeError(w, "Unknown sealed paper", err)
		return
	}

	content, err := h.vault.Redeem(r.Context(), sealed)
	if err != nil {
		h.writeError(w, "Failed to redeem paper", err)
		return
	}

	h.writeJSON(w, http.StatusOK, RedeemResponse{PaperID: paperID, Content: content})
}

// AnchorRequest is the body of POST /api/anchors.
type AnchorRequest struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Digest string `json:"digest"`
}

// HandleAnchor schedules an asynchronous digest anchoring and returns the
// pending record.
//
// URL format: POST /api/anchors
func (h *Handler) HandleAnchor(w http.ResponseWriter, r *http.Request) {
	var req AnchorRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}

	entity := interfaces.EntityRef{Kind: interfaces.EntityKind(req.Kind), ID: req.ID}
	if err := entity.Validate(); err != nil {
		http.Error(w, "Invalid entity", http.StatusBadRequest)
		return
	}

	digest, err := interfaces.NewDigestFromHex(req.Digest)
	if err != nil {
		http.Error(w, "Invalid digest", http.StatusBadRequest)
		return
	}

	record, err := h.anchors.Anchor(r.Context(), entity, digest)
	if err != nil {
		h.writeError(w, "Failed to schedule anchor", err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, record)
}

// HandleAnchorHistory returns the append-only anchor history for an entity,
// oldest first.
//
// URL format: GET /api/anchors/{kind}/{id}
func (h *Handler) HandleAnchorHistory(w http.ResponseWriter, r *http.Request) {
	entity := interfaces.EntityRef{
		Kind: interfaces.EntityKind(chi.URLParam(r, "kind")),
		ID:   chi.URLParam(r, "id"),
	}
	if err := entity.Validate(); err != nil {
		http.Error(w, "Invalid entity", http.StatusBadRequest)
		return
	}

	history, err := h.anchors.History(r.Context(), entity)
	if err != nil {
		h.writeError(w, "Failed to load anchor history", err)
		return
	}

	h.writeJSON(w, http.StatusOK, history)
}

// HandleAnchorReset moves a failed anchor record back to pending and
// resubmits it. Operator endpoint.
//
// URL format: POST /api/anchors/{record_id}/reset
func (h *Handler) HandleAnchorReset(w http.ResponseWriter, r *http.Request) {
	record, err := h.anchors.Reset(r.Context(), chi.URLParam(r, "record_id"))
	if err != nil {
		h.writeError(w, "Failed to reset anchor", err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, record)
}

// VerifyRequest is the body of POST /api/verify.
type VerifyRequest struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Digest string `json:"digest"`
}

// HandleVerify compares a locally computed digest against the latest
// confirmed anchor for the entity.
//
// URL format: POST /api/verify
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}

	entity := interfaces.EntityRef{Kind: interfaces.EntityKind(req.Kind), ID: req.ID}
	if err := entity.Validate(); err != nil {
		http.Error(w, "Invalid entity", http.StatusBadRequest)
		return
	}

	digest, err := interfaces.NewDigestFromHex(req.Digest)
	if err != nil {
		http.Error(w, "Invalid digest", http.StatusBadRequest)
		return
	}

	result, err := h.verifier.Verify(r.Context(), entity, digest)
	if err != nil {
		h.writeError(w, "Failed to verify", err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return err
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, interfaces.ErrInvalidPolicy):
		status = http.StatusBadRequest
	case errors.Is(err, interfaces.ErrShareAlreadyUsed),
		errors.Is(err, interfaces.ErrShareAlreadyDistributed),
		errors.Is(err, interfaces.ErrInsufficientShares),
		errors.Is(err, anchor.ErrSubmissionInFlight):
		status = http.StatusConflict
	case errors.Is(err, interfaces.ErrAnchorPermanent):
		status = http.StatusGone
	}

	if status == http.StatusInternalServerError {
		h.log.Error(msg, "err", err)
	} else {
		h.log.Debug(msg, "err", err)
	}
	http.Error(w, msg+": "+err.Error(), status)
}
