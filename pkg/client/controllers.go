package client

import (
	"context"

	"github.com/google/uuid"
)

// Role controllers wrap a session with the workflow each dashboard drives.
// There is no server push: every mutation re-fetches the listing it affects
// so the caller always renders fresh state.

type AccessionController struct {
	sess *Session
}

func NewAccessionController(sess *Session) *AccessionController {
	return &AccessionController{sess: sess}
}

// Register accessions a new sample and returns the refreshed pending queue.
func (a *AccessionController) Register(ctx context.Context, in RegisterSampleInput) (*Sample, []Sample, error) {
	sample, err := a.sess.RegisterSample(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	queue, err := a.sess.Samples(ctx, ListSamplesOptions{Status: "pending"})
	if err != nil {
		return sample, nil, err
	}
	return sample, queue, nil
}

func (a *AccessionController) PendingQueue(ctx context.Context) ([]Sample, error) {
	return a.sess.Samples(ctx, ListSamplesOptions{Status: "pending"})
}

type TechnicianController struct {
	sess *Session
}

func NewTechnicianController(sess *Session) *TechnicianController {
	return &TechnicianController{sess: sess}
}

// Worklist returns the technician's open assignments.
func (t *TechnicianController) Worklist(ctx context.Context) ([]Sample, error) {
	return t.sess.Samples(ctx, ListSamplesOptions{Mine: true})
}

// Claim takes a pending sample and returns the refreshed worklist.
func (t *TechnicianController) Claim(ctx context.Context, id uuid.UUID) ([]Sample, error) {
	if _, err := t.sess.AssignTechnician(ctx, id); err != nil {
		return nil, err
	}
	return t.Worklist(ctx)
}

func (t *TechnicianController) SendToImaging(ctx context.Context, id uuid.UUID, notes string) ([]Sample, error) {
	if _, err := t.sess.SendToImaging(ctx, id, notes); err != nil {
		return nil, err
	}
	return t.Worklist(ctx)
}

func (t *TechnicianController) SendToReview(ctx context.Context, id uuid.UUID, findings string) ([]Sample, error) {
	if _, err := t.sess.SendToReview(ctx, id, findings); err != nil {
		return nil, err
	}
	return t.Worklist(ctx)
}

type PathologistController struct {
	sess *Session
}

func NewPathologistController(sess *Session) *PathologistController {
	return &PathologistController{sess: sess}
}

// ReviewQueue returns samples awaiting review, urgent cases first.
func (p *PathologistController) ReviewQueue(ctx context.Context) ([]Sample, error) {
	return p.sess.Samples(ctx, ListSamplesOptions{Status: "review"})
}

// Finalize signs a sample out and returns the refreshed review queue.
func (p *PathologistController) Finalize(ctx context.Context, id uuid.UUID, diagnosis, recommendations string) ([]Sample, error) {
	if _, err := p.sess.FinalizeSample(ctx, id, diagnosis, recommendations); err != nil {
		return nil, err
	}
	return p.ReviewQueue(ctx)
}
