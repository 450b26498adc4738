package model

// User is a registered user. Posts are owned by the user and read through it.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Posts []Post `json:"posts"`
}

// UserDTO is the wire projection of User. Posts are never part of it; they
// are served by GET /users/:id/posts.
type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToUserDTO projects a user onto its wire shape.
func ToUserDTO(u User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// ToUserDTOs projects users preserving their order.
func ToUserDTOs(users []User) []UserDTO {
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, ToUserDTO(u))
	}
	return dtos
}

// UserFromDTO is the inverse of ToUserDTO. The returned user has no posts.
func UserFromDTO(dto UserDTO) User {
	return User{
		ID:    dto.ID,
		Name:  dto.Name,
		Email: dto.Email,
	}
}
