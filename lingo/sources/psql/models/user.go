package models

import "time"

type User struct {
	ID               int       `json:"_id" gorm:"primaryKey;autoIncrement"`
	Email            string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName         string    `json:"fullName" gorm:"type:varchar(255);not null"`
	PasswordHash     string    `json:"-" gorm:"type:varchar(255);not null"`
	Bio              string    `json:"bio" gorm:"type:text;default:''"`
	ProfilePic       string    `json:"profilePic" gorm:"type:varchar(512);default:''"`
	NativeLanguage   string    `json:"nativeLanguage" gorm:"type:varchar(64);default:''"`
	LearningLanguage string    `json:"learningLanguage" gorm:"type:varchar(64);default:''"`
	Location         string    `json:"location" gorm:"type:varchar(255);default:''"`
	IsOnboarded      bool      `json:"isOnboarded" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Profile is the public view of a user shown to friends.
type Profile struct {
	ID               int    `json:"_id"`
	FullName         string `json:"fullName"`
	ProfilePic       string `json:"profilePic"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:               u.ID,
		FullName:         u.FullName,
		ProfilePic:       u.ProfilePic,
		Bio:              u.Bio,
		NativeLanguage:   u.NativeLanguage,
		LearningLanguage: u.LearningLanguage,
		Location:         u.Location,
	}
}
