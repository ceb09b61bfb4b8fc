package models

import "golang.org/x/crypto/bcrypt"

// Operator is the single shop account configured at startup.
type Operator struct {
	Login    string `json:"login"`
	Password []byte `json:"-"`
}

func NewOperator(login, password string) (*Operator, error) {
	op := &Operator{Login: login}
	if err := op.SetPassword(password); err != nil {
		return nil, err
	}
	return op, nil
}

func (op *Operator) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	op.Password = hashedPassword
	return nil
}

func (op *Operator) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(op.Password, []byte(password))
}
