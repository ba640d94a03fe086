package service

import "golang.org/x/crypto/bcrypt"

// PasswordHasher aplica bcrypt con un costo ajustable.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher crea un PasswordHasher; un costo fuera de rango cae al default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash genera un hash bcrypt con sal aleatoria por llamada.
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compara contraseña y hash; un hash malformado falla la verificación.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
