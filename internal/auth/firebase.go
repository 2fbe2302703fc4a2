package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const firebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// FirebaseVerifier validates Firebase ID tokens against Google's published
// signing certificates. It checks the RS256 signature, issuer, audience and
// expiry, and returns the subject claim as the principal identifier.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	keyTTL    time.Duration
}

func NewFirebaseVerifier(projectID string) *FirebaseVerifier {
	return &FirebaseVerifier{
		projectID: projectID,
		certsURL:  firebaseCertsURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		keyTTL:    time.Hour,
	}
}

// NewFirebaseVerifierForTest points the verifier at a fake certificate
// endpoint.
func NewFirebaseVerifierForTest(projectID, certsURL string, client *http.Client) *FirebaseVerifier {
	v := NewFirebaseVerifier(projectID)
	v.certsURL = certsURL
	if client != nil {
		v.client = client
	}
	return v
}

func (v *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	sub, _, err := v.VerifyIDToken(ctx, tokenString)
	return sub, err
}

// VerifyIDToken returns both the subject and the email claim; the federated
// login endpoint needs the email to upsert the local user record.
func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, tokenString string) (string, string, error) {
	if v.projectID == "" {
		return "", "", ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no kid header")
		}
		return v.publicKey(ctx, kid)
	},
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", "", ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return sub, email, nil
}

func (v *FirebaseVerifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys == nil || time.Since(v.fetchedAt) > v.keyTTL {
		keys, err := v.fetchKeys(ctx)
		if err != nil {
			return nil, err
		}
		v.keys = keys
		v.fetchedAt = time.Now()
	}

	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no certificate found for kid %q", kid)
	}
	return key, nil
}

// fetchKeys downloads the kid -> PEM certificate map Google publishes for the
// securetoken service account.
func (v *FirebaseVerifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signing certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("certificate endpoint returned status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return nil, fmt.Errorf("failed to decode certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		block, _ := pem.Decode([]byte(certPEM))
		if block == nil {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			continue
		}
		if rsaKey, ok := cert.PublicKey.(*rsa.PublicKey); ok {
			keys[kid] = rsaKey
		}
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("no usable signing certificates returned")
	}
	return keys, nil
}
