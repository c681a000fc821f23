package firestore

import (
	"time"

	"atelier/internal/domain/entity"
)

// authRequestDoc is the Firestore document shape for a pending auth request.
// The token itself is the document id and is not duplicated as a field.
type authRequestDoc struct {
	Email       string     `firestore:"email"`
	DisplayName string     `firestore:"displayName,omitempty"`
	ContinueURL string     `firestore:"continueUrl"`
	Kind        string     `firestore:"kind"`
	Status      string     `firestore:"status"`
	CreatedAt   time.Time  `firestore:"createdAt"`
	ExpiresAt   time.Time  `firestore:"expiresAt"`
	VerifiedAt  *time.Time `firestore:"verifiedAt"`
	RequesterIP string     `firestore:"requesterIp,omitempty"`
}

func fromAuthRequestDomain(request *entity.AuthRequest) *authRequestDoc {
	return &authRequestDoc{
		Email:       request.Email,
		DisplayName: request.DisplayName,
		ContinueURL: request.ContinueURL,
		Kind:        string(request.Kind),
		Status:      string(request.Status),
		CreatedAt:   request.CreatedAt,
		ExpiresAt:   request.ExpiresAt,
		VerifiedAt:  request.VerifiedAt,
		RequesterIP: request.RequesterIP,
	}
}

func toAuthRequestDomain(token string, doc *authRequestDoc) *entity.AuthRequest {
	return &entity.AuthRequest{
		Token:       token,
		Email:       doc.Email,
		DisplayName: doc.DisplayName,
		ContinueURL: doc.ContinueURL,
		Kind:        entity.RequestKind(doc.Kind),
		Status:      entity.RequestStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
		ExpiresAt:   doc.ExpiresAt,
		VerifiedAt:  doc.VerifiedAt,
		RequesterIP: doc.RequesterIP,
	}
}

// profileDoc is the Firestore document shape for an application profile.
// The identity provider uid is the document id.
type profileDoc struct {
	Email       string    `firestore:"email"`
	Name        string    `firestore:"name"`
	CreatedAt   time.Time `firestore:"createdAt"`
	LastLoginAt time.Time `firestore:"lastLoginAt"`
	LoginCount  int       `firestore:"loginCount"`
	LastLoginIP string    `firestore:"lastLoginIp,omitempty"`
}

func fromProfileDomain(profile *entity.UserProfile) *profileDoc {
	return &profileDoc{
		Email:       profile.Email,
		Name:        profile.Name,
		CreatedAt:   profile.CreatedAt,
		LastLoginAt: profile.LastLoginAt,
		LoginCount:  profile.LoginCount,
		LastLoginIP: profile.LastLoginIP,
	}
}

func toProfileDomain(uid string, doc *profileDoc) *entity.UserProfile {
	return &entity.UserProfile{
		UID:         uid,
		Email:       doc.Email,
		Name:        doc.Name,
		CreatedAt:   doc.CreatedAt,
		LastLoginAt: doc.LastLoginAt,
		LoginCount:  doc.LoginCount,
		LastLoginIP: doc.LastLoginIP,
	}
}
