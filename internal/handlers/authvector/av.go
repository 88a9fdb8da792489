package authvector

import (
	"context"

	"github.com/sebas/cxgateway/internal/cxcodec"
	"github.com/sebas/cxgateway/internal/cxerrors"
	"github.com/sebas/cxgateway/internal/handlers/httpresult"
	"github.com/sebas/cxgateway/internal/hsscache"
	"github.com/sebas/cxgateway/internal/hsstask"
	"github.com/sebas/cxgateway/internal/stats"
)

// Scheme path segments accepted by GET /impi/{impi}/{scheme}.
const (
	SchemeSegmentDigest = "digest"
	SchemeSegmentAKA    = "aka"
	SchemeSegmentAV     = "av"
)

// ImpiAvTask serves GET /impi/{impi}/{av|aka|digest}.
type ImpiAvTask struct {
	*hsstask.Base
}

// NewImpiAvTask builds an AV task over the given shared base.
func NewImpiAvTask(base *hsstask.Base) *ImpiAvTask {
	return &ImpiAvTask{base}
}

// AvRequest is the decoded GET /impi/{impi}/{scheme} request.
type AvRequest struct {
	IMPI          string
	SchemeSegment string
	PublicID      string
	Autn          string // client-echoed AKA resync authorization, if any
}

func schemeFor(segment string) (string, bool) {
	switch segment {
	case SchemeSegmentDigest:
		return cxcodec.SchemeSIPDigest, true
	case SchemeSegmentAKA:
		return cxcodec.SchemeAKAv1MD5, true
	case SchemeSegmentAV:
		return cxcodec.SchemeUnknown, true
	default:
		return "", false
	}
}

type digestBody struct {
	HA1   string `json:"ha1"`
	Realm string `json:"realm"`
	QoP   string `json:"qop"`
}

type akaBody struct {
	Challenge    string `json:"challenge"`
	Response     string `json:"response"`
	CryptKey     string `json:"cryptkey"`
	IntegrityKey string `json:"integritykey"`
}

// Handle serves the request.
func (t *ImpiAvTask) Handle(ctx context.Context, req AvRequest) httpresult.Response {
	scheme, ok := schemeFor(req.SchemeSegment)
	if !ok {
		return httpresult.FromError(cxerrors.New(cxerrors.NotFound, nil))
	}
	if scheme == cxcodec.SchemeAKAv1MD5 && req.PublicID == "" {
		return httpresult.FromError(cxerrors.New(cxerrors.NotFound, nil))
	}

	if !t.HSSConfigured() {
		return t.handleNoHSS(ctx, req, scheme)
	}

	maReq := cxcodec.BuildMAR(t.Dict, t.NewSessionID(), t.Origin(), t.Destination(), req.IMPI, req.PublicID, t.Cfg.DefaultServerName, scheme, req.Autn)
	answer, err := t.SendDiameter(ctx, stats.HSSDigestLatencyUs, maReq, 0)
	if err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	maa := cxcodec.ParseMAA(t.Dict, answer)
	if cxerr := maa.Result.Classify(); cxerr != nil {
		if cxerr.Code.RecordsOverloadPenalty() {
			t.Stats.RecordPenalty(stats.HSSDigestLatencyUs)
		}
		return httpresult.FromError(cxerr)
	}

	switch maa.Scheme {
	case cxcodec.SchemeSIPDigest:
		return httpresult.JSON(200, map[string]digestBody{
			"digest": {HA1: maa.Digest.HA1, Realm: maa.Digest.Realm, QoP: maa.Digest.EffectiveQoP()},
		})
	case cxcodec.SchemeAKAv1MD5:
		return httpresult.JSON(200, map[string]akaBody{
			"aka": {
				Challenge:    cxcodec.EncodeBase64(maa.AKA.Challenge),
				Response:     cxcodec.EncodeHex(maa.AKA.Response),
				CryptKey:     cxcodec.EncodeHex(maa.AKA.CryptKey),
				IntegrityKey: cxcodec.EncodeHex(maa.AKA.IntegrityKey),
			},
		})
	default:
		return httpresult.FromError(cxerrors.New(cxerrors.NotFound, nil))
	}
}

// handleNoHSS serves the cache-only deployment: only a digest vector can
// come out of the cache, so aka/av queries have nothing to answer with.
func (t *ImpiAvTask) handleNoHSS(ctx context.Context, req AvRequest, scheme string) httpresult.Response {
	if scheme != cxcodec.SchemeSIPDigest {
		return httpresult.FromError(cxerrors.New(cxerrors.NotFound, nil))
	}
	v, status, err := t.GetAuthVector(ctx, req.IMPI, req.PublicID)
	if err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	switch status {
	case hsscache.StatusOK:
		return httpresult.JSON(200, map[string]digestBody{
			"digest": {HA1: v.HA1, Realm: v.Realm, QoP: v.EffectiveQoP()},
		})
	case hsscache.StatusNotFound:
		return httpresult.FromError(cxerrors.New(cxerrors.NotFound, nil))
	default:
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, nil))
	}
}
