package models

import (
	"context"
	"fmt"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/raido/geom"
	"github.com/aukilabs/raido/rtree"
	"github.com/aukilabs/raido/wire"
	"github.com/google/uuid"
)

// Scene is a shared 3D space: participants join it, add objects to it,
// and cast rays against the index that stores them.
type Scene struct {
	ID        uint32
	SceneUUID string

	participantIDs   SequentialIDGenerator
	participantMutex sync.RWMutex
	participants     map[uint32]*Participant

	objectIDs  SequentialIDGenerator
	indexMutex sync.RWMutex
	index      *rtree.RTree[*Object]
	objects    map[uint32]*Object
}

func NewScene(id uint32) *Scene {
	return &Scene{
		ID:           id,
		SceneUUID:    uuid.NewString(),
		participants: make(map[uint32]*Participant),
		index:        rtree.New[*Object](),
		objects:      make(map[uint32]*Object),
	}
}

func (s *Scene) NewParticipantID() uint32 {
	return s.participantIDs.New()
}

func (s *Scene) AddParticipant(p *Participant) {
	s.participantMutex.Lock()
	defer s.participantMutex.Unlock()

	s.participants[p.ID] = p
}

func (s *Scene) RemoveParticipant(p *Participant) {
	s.participantMutex.Lock()
	defer s.participantMutex.Unlock()

	delete(s.participants, p.ID)
}

func (s *Scene) GetParticipants() []*Participant {
	s.participantMutex.RLock()
	defer s.participantMutex.RUnlock()

	participants := make([]*Participant, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, p)
	}
	return participants
}

func (s *Scene) ParticipantCount() int {
	s.participantMutex.RLock()
	defer s.participantMutex.RUnlock()

	return len(s.participants)
}

func (s *Scene) NewObjectID() uint32 {
	return s.objectIDs.New()
}

// AddObject stores the object and indexes its bounds. Objects stay for
// the lifetime of the scene; the index has no removal.
func (s *Scene) AddObject(o *Object) {
	s.indexMutex.Lock()
	defer s.indexMutex.Unlock()

	s.objects[o.ID] = o
	s.index.Insert(o)

	instrumentCountObject()
}

func (s *Scene) ObjectByID(id uint32) (*Object, bool) {
	s.indexMutex.RLock()
	defer s.indexMutex.RUnlock()

	o, ok := s.objects[id]
	return o, ok
}

func (s *Scene) Objects() []*Object {
	s.indexMutex.RLock()
	defer s.indexMutex.RUnlock()

	objects := make([]*Object, 0, len(s.objects))
	for _, o := range s.objects {
		objects = append(objects, o)
	}
	return objects
}

func (s *Scene) ObjectCount() int {
	s.indexMutex.RLock()
	defer s.indexMutex.RUnlock()

	return len(s.objects)
}

// Raycast returns up to limit objects whose indexed bounds the ray
// crosses, in traversal order. A limit of zero or less returns every
// candidate. The read lock is held for the whole pull so a concurrent
// insert cannot invalidate the traversal.
func (s *Scene) Raycast(ray geom.Ray, limit int) []*Object {
	s.indexMutex.RLock()
	defer s.indexMutex.RUnlock()

	var hits []*Object
	it := s.index.Query(ray)
	for limit <= 0 || len(hits) < limit {
		obj, ok := it.Next()
		if !ok {
			break
		}
		hits = append(hits, *obj)
	}
	return hits
}

// IndexStats reports the current shape of the scene's spatial index.
func (s *Scene) IndexStats() rtree.Stats {
	s.indexMutex.RLock()
	defer s.indexMutex.RUnlock()

	return s.index.Stats()
}

// Broadcast sends the payload to every participant except the sender.
func (s *Scene) Broadcast(sender *Participant, payload any) {
	s.participantMutex.RLock()
	defer s.participantMutex.RUnlock()

	msg, err := wire.MsgFrom(payload)
	if err != nil {
		logs.WithTag("payload", payload).Debug(err)
		return
	}

	for _, p := range s.participants {
		if p == sender {
			continue
		}
		p.Responder.SendMsg(msg)
	}
}

// SceneStore registers the scenes a server hosts and issues their
// global ids.
type SceneStore struct {
	// The server id embedded in global scene ids.
	ServerID string

	initOnce sync.Once
	mutex    sync.RWMutex
	scenes   map[string]*Scene
	ids      SequentialIDGenerator
}

func (s *SceneStore) init() {
	s.scenes = map[string]*Scene{}

	if s.ServerID == "" {
		s.ServerID = "raido"
	}
}

func (s *SceneStore) NewID() uint32 {
	return s.ids.New()
}

func (s *SceneStore) Add(ctx context.Context, scene *Scene) error {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.scenes[s.GlobalSceneID(scene.ID)] = scene

	instrumentIncreaseSceneGauge()
	instrumentCountScene()
	return nil
}

func (s *SceneStore) Remove(ctx context.Context, scene *Scene) {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.scenes, s.GlobalSceneID(scene.ID))
	s.ids.Reuse(scene.ID)

	instrumentDecreaseSceneGauge()
}

func (s *SceneStore) GetByGlobalID(v string) (*Scene, bool) {
	s.initOnce.Do(s.init)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	scene, ok := s.scenes[v]
	return scene, ok
}

// GlobalSceneID is the scene id clients see: the server id joined with
// the local scene id in hex.
func (s *SceneStore) GlobalSceneID(sceneID uint32) string {
	s.initOnce.Do(s.init)

	return fmt.Sprintf("%sx%x", s.ServerID, sceneID)
}
