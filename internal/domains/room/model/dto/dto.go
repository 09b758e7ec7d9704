package dto

import (
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"huddle/internal/domains/room/model"
	"huddle/shared"
	gDto "huddle/shared/dto"
	gModel "huddle/shared/model"
	"huddle/shared/timezone"
)

type CreateRoomRequest struct {
	Name      string                `json:"name"      validate:"required,max=100"`
	Building  string                `json:"building"  validate:"required,max=100"`
	Floor     int                   `json:"floor"     validate:"omitempty"`
	Capacity  int                   `json:"capacity"  validate:"required,min=1"`
	Equipment []string              `json:"equipment" validate:"omitempty,dive,max=50"`
	Image     *multipart.FileHeader `json:"image"     validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
}

func (c *CreateRoomRequest) ToModel(user string, imageURL string) model.Room {
	return model.Room{
		ID:        uuid.NewString(),
		Name:      c.Name,
		Building:  c.Building,
		Floor:     c.Floor,
		Capacity:  c.Capacity,
		Equipment: pq.StringArray(c.Equipment),
		Image:     imageURL,
		Status:    model.StatusActive,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	Name      string                `db:"name"      json:"name"      validate:"omitempty,max=100"`
	Building  string                `db:"building"  json:"building"  validate:"omitempty,max=100"`
	Floor     *int                  `db:"floor"     json:"floor"     validate:"omitempty"`
	Capacity  *int                  `db:"capacity"  json:"capacity"  validate:"omitempty,min=1"`
	Equipment []string              `json:"equipment" validate:"omitempty,dive,max=50"`
	Image     *multipart.FileHeader `json:"image"     validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
}

type RoomResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Building  string   `json:"building"`
	Floor     int      `json:"floor"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment"`
	Image     string   `json:"image"`
	Status    string   `json:"status"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Building = model.Building
	r.Floor = model.Floor
	r.Capacity = model.Capacity
	r.Equipment = model.Equipment
	r.Image = model.Image
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
