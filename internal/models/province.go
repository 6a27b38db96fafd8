// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Province is an administrative unit a site can be located in.
type Province struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
