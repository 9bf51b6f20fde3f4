package domain

// FootballTeam es un equipo seleccionable como favorito.
type FootballTeam struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Crest     string `json:"crest,omitempty"`
	League    string `json:"league,omitempty"`
}

// User es el usuario autenticado tal como lo devuelve el backend de auth.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Token        string        `json:"token,omitempty"`
	DisplayName  string        `json:"displayName,omitempty"`
	PhoneNumber  string        `json:"phoneNumber,omitempty"`
	DateOfBirth  string        `json:"dateOfBirth,omitempty"`
	Location     string        `json:"location,omitempty"`
	FavoriteTeam *FootballTeam `json:"favoriteTeam,omitempty"`
	AvatarURL    string        `json:"avatarUrl,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
}

// Name devuelve el nombre a mostrar, con fallback a nombre completo o email.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.FirstName != "" || u.LastName != "" {
		if u.LastName == "" {
			return u.FirstName
		}
		if u.FirstName == "" {
			return u.LastName
		}
		return u.FirstName + " " + u.LastName
	}
	return u.Email
}

// ProfileUpdate contiene solo los campos que se envian al editar el perfil.
type ProfileUpdate struct {
	DisplayName  *string       `json:"displayName,omitempty"`
	Email        *string       `json:"email,omitempty"`
	FirstName    *string       `json:"firstName,omitempty"`
	LastName     *string       `json:"lastName,omitempty"`
	PhoneNumber  *string       `json:"phoneNumber,omitempty"`
	DateOfBirth  *string       `json:"dateOfBirth,omitempty"`
	Location     *string       `json:"location,omitempty"`
	FavoriteTeam *FootballTeam `json:"favoriteTeam,omitempty"`
}

// Apply copia sobre u los campos presentes en la actualizacion.
func (p ProfileUpdate) Apply(u User) User {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.DateOfBirth != nil {
		u.DateOfBirth = *p.DateOfBirth
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.FavoriteTeam != nil {
		team := *p.FavoriteTeam
		u.FavoriteTeam = &team
	}
	return u
}

// Testimonial es la valoracion que un usuario deja sobre la app.
type Testimonial struct {
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}
