// Package authvector implements the digest/AV serving tasks:
// ImpiDigestTask and ImpiAvTask.
package authvector

import (
	"context"

	"github.com/sebas/cxgateway/internal/cxcodec"
	"github.com/sebas/cxgateway/internal/cxerrors"
	"github.com/sebas/cxgateway/internal/handlers/httpresult"
	"github.com/sebas/cxgateway/internal/hsscache"
	"github.com/sebas/cxgateway/internal/hsstask"
	"github.com/sebas/cxgateway/internal/imsdata"
	"github.com/sebas/cxgateway/internal/logging"
	"github.com/sebas/cxgateway/internal/stats"
)

const component = "authvector"

// ImpiDigestTask serves GET /impi/{impi}/digest?public_id={impu}.
type ImpiDigestTask struct {
	*hsstask.Base
}

// NewImpiDigestTask builds a digest task over the given shared base.
func NewImpiDigestTask(base *hsstask.Base) *ImpiDigestTask {
	return &ImpiDigestTask{base}
}

type digestResponse struct {
	DigestHA1 string `json:"digest_ha1"`
}

// DigestRequest is the decoded GET /impi/{impi}/digest request.
type DigestRequest struct {
	IMPI     string
	PublicID string
}

// Handle serves the request.
func (t *ImpiDigestTask) Handle(ctx context.Context, req DigestRequest) httpresult.Response {
	if !t.HSSConfigured() {
		return t.handleNoHSS(ctx, req)
	}
	return t.handleHSS(ctx, req)
}

func (t *ImpiDigestTask) handleNoHSS(ctx context.Context, req DigestRequest) httpresult.Response {
	v, status, err := t.GetAuthVector(ctx, req.IMPI, req.PublicID)
	if err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	switch status {
	case hsscache.StatusOK:
		return httpresult.JSON(200, digestResponse{DigestHA1: v.HA1})
	case hsscache.StatusNotFound:
		return httpresult.FromError(cxerrors.New(cxerrors.NotFound, nil))
	default:
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, nil))
	}
}

func (t *ImpiDigestTask) handleHSS(ctx context.Context, req DigestRequest) httpresult.Response {
	impu := req.PublicID
	if impu == "" {
		impus, status, err := t.GetAssociatedPublicIDs(ctx, req.IMPI)
		if err != nil {
			return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
		}
		if status != hsscache.StatusOK || len(impus) == 0 {
			return httpresult.FromError(cxerrors.New(cxerrors.NotFound, nil))
		}
		impu = impus[0]
	}

	maa, cxerr := t.fetchDigest(ctx, req.IMPI, impu)
	if cxerr != nil {
		return httpresult.FromError(cxerr)
	}

	if _, err := t.PutAssociatedPublicID(ctx, req.IMPI, impu, t.Cfg.ReregistrationInterval); err != nil {
		logging.Warn(component, "failed to cache-warm associated public id", "impi", req.IMPI, "impu", impu, "err", err)
	}
	return httpresult.JSON(200, digestResponse{DigestHA1: maa.HA1})
}

// fetchDigest issues a MAR with scheme=SIP Digest and applies the MAA
// policy: success+SIP-Digest scheme is the only 200
// path; AKA/Unknown scheme on an otherwise-successful answer is a 404,
// matching the "we asked for digest and didn't get one" case.
func (t *ImpiDigestTask) fetchDigest(ctx context.Context, impi, impu string) (imsdata.DigestAuthVector, *cxerrors.Error) {
	req := cxcodec.BuildMAR(t.Dict, t.NewSessionID(), t.Origin(), t.Destination(), impi, impu, t.Cfg.DefaultServerName, cxcodec.SchemeSIPDigest, "")
	answer, err := t.SendDiameter(ctx, stats.HSSDigestLatencyUs, req, 0)
	if err != nil {
		return imsdata.DigestAuthVector{}, cxerrors.New(cxerrors.UpstreamOverload, err)
	}
	maa := cxcodec.ParseMAA(t.Dict, answer)
	if cxerr := maa.Result.Classify(); cxerr != nil {
		if cxerr.Code.RecordsOverloadPenalty() {
			t.Stats.RecordPenalty(stats.HSSDigestLatencyUs)
		}
		return imsdata.DigestAuthVector{}, cxerr
	}
	if maa.Scheme != cxcodec.SchemeSIPDigest {
		return imsdata.DigestAuthVector{}, cxerrors.New(cxerrors.NotFound, nil)
	}
	return maa.Digest, nil
}
