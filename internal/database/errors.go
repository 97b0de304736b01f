package database

import "errors"

var (
	// ErrSlotTaken - слот заняли между показом и подтверждением.
	ErrSlotTaken = errors.New("slot is already booked")

	// ErrSlotNotFound - слот не существует (удалён или id неверный).
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotExists - слот на эту дату и время уже есть.
	ErrSlotExists = errors.New("slot already exists")

	// ErrSlotBooked - слот нельзя удалить, пока на нём активная запись.
	ErrSlotBooked = errors.New("slot has an active booking")

	// ErrBookingNotFound - записи нет либо она уже отменена.
	ErrBookingNotFound = errors.New("booking not found")
)
