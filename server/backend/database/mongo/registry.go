/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mongo

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonoptions"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yorkie-team/folio/api/types"
)

var tID = reflect.TypeOf(types.ID(""))

// NewRegistry returns a new registry that stores types.ID as ObjectID.
func NewRegistry() *bsoncodec.Registry {
	registry := bson.NewRegistry()

	// ObjectIDs are decoded as hex strings, and null as an empty ID.
	registry.RegisterTypeDecoder(
		tID,
		bsoncodec.NewStringCodec(bsonoptions.StringCodec().SetDecodeObjectIDAsHex(true)),
	)
	registry.RegisterTypeEncoder(tID, bsoncodec.ValueEncoderFunc(idEncoder))

	return registry
}

func idEncoder(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tID {
		return bsoncodec.ValueEncoderError{Name: "idEncoder", Types: []reflect.Type{tID}, Received: val}
	}

	id := val.Interface().(types.ID)
	if id == "" {
		if err := vw.WriteNull(); err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
		return nil
	}

	objectID, err := encodeID(id)
	if err != nil {
		return err
	}
	if err := vw.WriteObjectID(objectID); err != nil {
		return fmt.Errorf("encode error: %w", err)
	}
	return nil
}

func encodeID(id types.ID) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return objectID, fmt.Errorf("%s: %w", id, types.ErrInvalidID)
	}
	return objectID, nil
}
