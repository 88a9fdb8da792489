package hsscache

import (
	"context"
	"testing"
	"time"

	"github.com/sebas/cxgateway/internal/imsdata"
)

func TestPutAndGetRegData(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	irs := []string{"sip:primary@example.com", "sip:alias@example.com"}
	status, err := c.PutRegData(irs, time.Hour).
		WithXML("<IMSSubscription/>").
		WithRegState(imsdata.Registered).
		WithAssociatedIMPIs([]string{"impi@example.com"}).
		Execute(ctx)
	if err != nil || status != StatusOK {
		t.Fatalf("PutRegData: status=%v err=%v", status, err)
	}

	for _, impu := range irs {
		rec, status, err := c.GetRegData(ctx, impu)
		if err != nil || status != StatusOK {
			t.Fatalf("GetRegData(%s): status=%v err=%v", impu, status, err)
		}
		if rec.RegState != imsdata.Registered {
			t.Errorf("RegState = %v, want REGISTERED", rec.RegState)
		}
		if rec.XML != "<IMSSubscription/>" {
			t.Errorf("XML = %q", rec.XML)
		}
	}
}

func TestGetRegDataNotFound(t *testing.T) {
	c := New()
	defer c.Close()
	_, status, err := c.GetRegData(context.Background(), "sip:missing@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusNotFound {
		t.Errorf("status = %v, want NOT_FOUND", status)
	}
}

func TestGetAssociatedPrimaryPublicIDsDedup(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	irs := []string{"sip:primary@example.com", "sip:alias@example.com"}
	if _, err := c.PutRegData(irs, time.Hour).
		WithAssociatedIMPIs([]string{"impi1@example.com", "impi2@example.com"}).
		Execute(ctx); err != nil {
		t.Fatalf("PutRegData: %v", err)
	}

	primaries, status, err := c.GetAssociatedPrimaryPublicIDs(ctx, []string{"impi1@example.com", "impi2@example.com"})
	if err != nil || status != StatusOK {
		t.Fatalf("GetAssociatedPrimaryPublicIDs: status=%v err=%v", status, err)
	}
	if len(primaries) != 1 || primaries[0] != irs[0] {
		t.Errorf("primaries = %v, want [%s]", primaries, irs[0])
	}
}

func TestDeletePublicIDsRemovesRowsAndAssociations(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	irs := []string{"sip:primary@example.com"}
	impis := []string{"impi@example.com"}
	if _, err := c.PutRegData(irs, time.Hour).WithAssociatedIMPIs(impis).Execute(ctx); err != nil {
		t.Fatalf("PutRegData: %v", err)
	}

	if _, err := c.DeletePublicIDs(ctx, irs, impis, time.Now()); err != nil {
		t.Fatalf("DeletePublicIDs: %v", err)
	}

	if _, status, _ := c.GetRegData(ctx, irs[0]); status != StatusNotFound {
		t.Errorf("expected regData row gone, got status %v", status)
	}
	if _, status, _ := c.GetAssociatedPublicIDs(ctx, impis[0]); status != StatusNotFound {
		t.Errorf("expected impi association gone, got status %v", status)
	}
}

func TestDissociateKeepsRegDataRow(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	irs := []string{"sip:primary@example.com"}
	impis := []string{"impi1@example.com", "impi2@example.com"}
	if _, err := c.PutRegData(irs, time.Hour).WithAssociatedIMPIs(impis).Execute(ctx); err != nil {
		t.Fatalf("PutRegData: %v", err)
	}

	if _, err := c.DissociateImplicitRegistrationSetFromImpi(ctx, irs, []string{"impi1@example.com"}, time.Now()); err != nil {
		t.Fatalf("Dissociate: %v", err)
	}

	rec, status, err := c.GetRegData(ctx, irs[0])
	if err != nil || status != StatusOK {
		t.Fatalf("GetRegData: status=%v err=%v", status, err)
	}
	if len(rec.AssociatedIMPIs) != 1 || rec.AssociatedIMPIs[0] != "impi2@example.com" {
		t.Errorf("AssociatedIMPIs = %v, want [impi2@example.com]", rec.AssociatedIMPIs)
	}
}

func TestWithRegStateUnchangedIsNoop(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()
	irs := []string{"sip:primary@example.com"}

	if _, err := c.PutRegData(irs, time.Hour).WithRegState(imsdata.Registered).Execute(ctx); err != nil {
		t.Fatalf("PutRegData: %v", err)
	}
	if _, err := c.PutRegData(irs, time.Hour).WithRegState(imsdata.Unchanged).WithXML("<x/>").Execute(ctx); err != nil {
		t.Fatalf("PutRegData: %v", err)
	}

	rec, _, _ := c.GetRegData(ctx, irs[0])
	if rec.RegState != imsdata.Registered {
		t.Errorf("RegState = %v, want unchanged REGISTERED", rec.RegState)
	}
}

func TestAuthVectorRoundTrip(t *testing.T) {
	c := New()
	defer c.Close()
	ctx := context.Background()

	v := imsdata.DigestAuthVector{HA1: "ha1val", Realm: "example.com"}
	if _, err := c.PutAuthVector(ctx, "impi@example.com", "sip:impu@example.com", v, time.Hour); err != nil {
		t.Fatalf("PutAuthVector: %v", err)
	}
	got, status, err := c.GetAuthVector(ctx, "impi@example.com", "sip:impu@example.com")
	if err != nil || status != StatusOK {
		t.Fatalf("GetAuthVector: status=%v err=%v", status, err)
	}
	if got != v {
		t.Errorf("GetAuthVector = %+v, want %+v", got, v)
	}
}
