package service

import (
	"context"
	"fmt"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/google/uuid"
)

// CertificationService quality certification submission and review
type CertificationService struct {
	certRepo *repository.CertificationRepository
}

func NewCertificationService(certRepo *repository.CertificationRepository) *CertificationService {
	return &CertificationService{certRepo: certRepo}
}

// ListCertifications pages certifications
func (s *CertificationService) ListCertifications(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Certification, int64, error) {
	return s.certRepo.FindAll(ctx, page, pageSize, filters)
}

// GetCertification loads one certification
func (s *CertificationService) GetCertification(ctx context.Context, id string) (*entity.Certification, error) {
	return s.certRepo.FindByID(ctx, id)
}

// SubmitCertificationRequest submission payload
type SubmitCertificationRequest struct {
	CertType    string     `json:"cert_type" binding:"required"`
	Issuer      string     `json:"issuer"`
	DocumentURL string     `json:"document_url"`
	IssuedAt    *time.Time `json:"issued_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// SubmitCertification files a certification for admin review.
func (s *CertificationService) SubmitCertification(ctx context.Context, userID string, req *SubmitCertificationRequest) (*entity.Certification, error) {
	cert := &entity.Certification{
		ID:          uuid.New().String()[:32],
		UserID:      userID,
		CertType:    req.CertType,
		Issuer:      req.Issuer,
		DocumentURL: req.DocumentURL,
		IssuedAt:    req.IssuedAt,
		ExpiresAt:   req.ExpiresAt,
		Status:      entity.CertStatusPending,
	}

	if err := s.certRepo.Create(ctx, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

// ReviewCertification verifies or revokes a certification (admin only).
func (s *CertificationService) ReviewCertification(ctx context.Context, id, decision, reviewerID string) (*entity.Certification, error) {
	cert, err := s.certRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch decision {
	case entity.CertStatusVerified, entity.CertStatusRevoked:
	default:
		return nil, fmt.Errorf("invalid decision: %s", decision)
	}

	now := time.Now()
	cert.Status = decision
	cert.VerifiedBy = &reviewerID
	cert.VerifiedAt = &now
	if err := s.certRepo.Update(ctx, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

// ExpireOverdue flips past-expiry verified certifications to expired.
func (s *CertificationService) ExpireOverdue(ctx context.Context) (int64, error) {
	return s.certRepo.ExpireOverdue(ctx, time.Now())
}
