package rabbitmq

import amqp "github.com/rabbitmq/amqp091-go"

const USER_INFO_UPDATED_QUEUE = "user.info.updated"

type MQConn struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func New(connString string) (*MQConn, error) {
	conn, err := amqp.Dial(connString)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := channel.QueueDeclare(USER_INFO_UPDATED_QUEUE, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &MQConn{
		conn:    conn,
		channel: channel,
	}, nil
}

func (m *MQConn) Consume(queue string) (<-chan amqp.Delivery, error) {
	return m.channel.Consume(queue, "", false, false, false, false, nil)
}

func (m *MQConn) Close() error {
	if err := m.channel.Close(); err != nil {
		return err
	}
	return m.conn.Close()
}
