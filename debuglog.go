package poolecs

import (
	"github.com/sirupsen/logrus"
)

// LogListener reports world and systems lifecycle events through logrus. It
// implements WorldEventListener and SystemsEventListener; register it with
// AddEventListener on either. Like every debug listener it only receives
// events when DEBUG is enabled.
type LogListener struct {
	logger logrus.FieldLogger
}

// NewLogListener creates a listener writing to the given logger, or to the
// logrus standard logger when nil.
func NewLogListener(logger logrus.FieldLogger) *LogListener {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogListener{logger: logger}
}

// OnEntityCreated implements WorldEventListener.
func (self *LogListener) OnEntityCreated(entity Entity) {
	self.logger.WithFields(logrus.Fields{
		"entity": entity.String(),
	}).Debug("entity created")
}

// OnEntityDestroyed implements WorldEventListener.
func (self *LogListener) OnEntityDestroyed(entity Entity) {
	self.logger.WithFields(logrus.Fields{
		"entity": entity.String(),
	}).Debug("entity destroyed")
}

// OnFilterCreated implements WorldEventListener.
func (self *LogListener) OnFilterCreated(filter *Filter) {
	self.logger.WithFields(logrus.Fields{
		"include": filter.include,
		"exclude": filter.exclude,
	}).Debug("filter created")
}

// OnComponentListChanged implements WorldEventListener.
func (self *LogListener) OnComponentListChanged(entity Entity) {
	self.logger.WithFields(logrus.Fields{
		"entity":     entity.String(),
		"components": entity.owner.entities[entity.id].componentsCountX2 / 2,
	}).Debug("component list changed")
}

// OnWorldDestroyed implements WorldEventListener.
func (self *LogListener) OnWorldDestroyed(world *World) {
	stats := world.Stats()
	self.logger.WithFields(logrus.Fields{
		"entities": stats.ActiveEntities,
		"filters":  stats.Filters,
	}).Debug("world destroyed")
}

// OnSystemsDestroyed implements SystemsEventListener.
func (self *LogListener) OnSystemsDestroyed(systems *Systems) {
	self.logger.WithFields(logrus.Fields{
		"systems": systems.Name(),
	}).Debug("systems destroyed")
}
